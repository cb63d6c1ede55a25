package types

// Version is the build version of gdship. Overwritten by -ldflags at release time.
var Version = "dev"
