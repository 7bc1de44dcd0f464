package utils

import "go.uber.org/zap"

// NewLogger builds the process logger. Development gets the human-readable
// console encoder, everything else the production JSON one.
func NewLogger(env string) *zap.Logger {
	build := zap.NewProduction
	if env == "development" {
		build = zap.NewDevelopment
	}
	log, err := build()
	if err != nil {
		panic(err)
	}
	return log
}
