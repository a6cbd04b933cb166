package testutil

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

// WAVBytes returns a minimal valid WAV file: 16 kHz, mono, 16-bit PCM
// with 2048 bytes of silence.
func WAVBytes() []byte {
	wavHeader := []byte{
		0x52, 0x49, 0x46, 0x46, // "RIFF"
		0x24, 0x08, 0x00, 0x00, // File size (2084 bytes)
		0x57, 0x41, 0x56, 0x45, // "WAVE"
		0x66, 0x6D, 0x74, 0x20, // "fmt "
		0x10, 0x00, 0x00, 0x00, // Chunk size
		0x01, 0x00, // Audio format (PCM)
		0x01, 0x00, // Channels (mono)
		0x80, 0x3E, 0x00, 0x00, // Sample rate (16000)
		0x00, 0x7D, 0x00, 0x00, // Byte rate
		0x02, 0x00, // Block align
		0x10, 0x00, // Bits per sample
		0x64, 0x61, 0x74, 0x61, // "data"
		0x00, 0x08, 0x00, 0x00, // Data size (2048 bytes)
	}
	return append(wavHeader, make([]byte, 2048)...)
}

// CreateTestAudioFile writes WAVBytes to name inside a test temp directory.
func CreateTestAudioFile(t *testing.T, name string) string {
	t.Helper()

	fullPath := filepath.Join(t.TempDir(), filepath.Base(name))
	if err := os.WriteFile(fullPath, WAVBytes(), 0644); err != nil {
		t.Fatalf("Failed to create test audio file: %v", err)
	}
	return fullPath
}

// MultipartUpload builds a multipart/form-data body with one file part.
// An empty field name produces a form without any file part.
func MultipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	} else if err := writer.WriteField("note", "no file attached"); err != nil {
		t.Fatalf("Failed to write form field: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// ScratchEntries returns the names of all files left in dir.
func ScratchEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read scratch directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
