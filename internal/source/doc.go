// Package source abstracts the handedness recognizer. The recognizer
// itself (screen capture and OCR) lives outside this process; the monitor
// only sees one Signal per poll, and any recognition failure surfaces as
// an error the orchestrator maps to an Unknown reading.
package source
