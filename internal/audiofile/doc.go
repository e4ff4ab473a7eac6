// Package audiofile reads and writes the audio files the mixdown command
// works with. WAV, FLAC and MP3 are decoded to buffer.Audio; mixes are
// written as integer PCM WAV.
package audiofile
