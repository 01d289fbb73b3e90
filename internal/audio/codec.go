package audio

import "context"

// ConvertRequest describes one container conversion.
type ConvertRequest struct {
	Source       string            // input file path
	InputFormat  string            // decoder hint derived from the extension
	Destination  string            // output file path
	OutputFormat string            // container to encode
	SampleRate   int               // output sample rate in Hz, 0 keeps the source rate
	Channels     int               // output channel count, 0 keeps the source layout
	Bitrate      string            // encoder bitrate such as "32k", empty for the encoder default
	Tags         map[string]string // metadata written into the output
}

// Codec converts audio between containers.
type Codec interface {
	Convert(ctx context.Context, req ConvertRequest) error
}
