package app

// Version is stamped by the release build via -ldflags.
var Version = "dev"
