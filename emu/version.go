package emu

const (
	Name    = "echip8"
	Version = "0.1.0"
)
