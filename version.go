package surveylogic

// Version is overridden at build time with -ldflags "-X github.com/aretw0/surveylogic.Version=...".
var Version = "dev"
