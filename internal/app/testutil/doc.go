// Package testutil provides testing utilities shared by the whisper-stt
// packages.
//
// It contains three components:
//
// 1. Mocks (mock_model.go, mock_services.go):
//   - MockModel: testify mock of transcriber.Model
//   - MockTranscriptionService: testify mock of services.TranscriptionService
//
// 2. Fixtures (fixtures.go):
//   - WAVBytes / CreateTestAudioFile: a minimal 16 kHz mono WAV file
//   - MultipartUpload: a multipart/form-data body as the desktop client sends it
//   - ScratchEntries: lists what is left in a scratch directory
//
// # Usage Examples
//
//	model := testutil.NewMockModel(t)
//	model.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
//		Return(testutil.Segments("Hello", "world."), nil)
//
//	body, contentType := testutil.MultipartUpload(t, "file", "recording.wav", testutil.WAVBytes())
//	req := httptest.NewRequest("POST", "/transcribe", body)
//	req.Header.Set("Content-Type", contentType)
package testutil
