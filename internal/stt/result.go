package stt

// Result represents the result of a speech-to-text transcription
type Result struct {
	Text     string // The full transcript as the engine produced it
	Language string // Detected language, empty if the provider does not report it
	Provider string // The provider used (e.g., "whisper", "openai")
	Model    string // The resolved model name for the tier
}
