package model

// Version is overridden at build time with -ldflags "-X dataimport/internal/model.Version=...".
var Version = "v0.3.0"
