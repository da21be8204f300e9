package convert

// Package convert produces the final MP3 from a downloaded media file by
// shelling out to the external ffmpeg binary. Progress is read from ffmpeg's
// -progress output and scaled against the input duration (ffprobe). The
// binary's absence is a reported, non-fatal condition.
