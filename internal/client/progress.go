package client

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// UploadProgress renders a byte counter for a single upload.
type UploadProgress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	enabled   bool
	mu        sync.Mutex
}

func NewUploadProgress(config ProgressConfig, name string, size int64) *UploadProgress {
	if !config.Enabled {
		return &UploadProgress{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	// auto refresh keeps rendering when writer is a pipe or a buffer
	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithAutoRefresh(),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	bar := container.AddBar(size,
		mpb.PrependDecorators(
			decor.Name(name+" ", decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(
				decor.NewPercentage("%.1f", decor.WCSyncSpace), "uploaded",
			),
		),
	)

	return &UploadProgress{
		container: container,
		bar:       bar,
		enabled:   true,
	}
}

// Reader wraps r so reads advance the bar. With progress disabled r is
// returned unchanged.
func (up *UploadProgress) Reader(r io.Reader) io.Reader {
	if !up.enabled || up.bar == nil {
		return r
	}
	return up.bar.ProxyReader(r)
}

// Finish completes the bar, or aborts it when err is set, and waits for the
// final render.
func (up *UploadProgress) Finish(err error) {
	if !up.enabled || up.container == nil {
		return
	}

	up.mu.Lock()
	defer up.mu.Unlock()

	if err != nil {
		up.bar.Abort(false)
	} else {
		up.bar.SetTotal(up.bar.Current(), true)
	}
	up.container.Wait()
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr)
}
