package logger_test

import (
	"errors"

	"github.com/wonny/strikezone/pkg/config"
	"github.com/wonny/strikezone/pkg/logger"
)

// Example_batch shows the fields a batch run attaches per season
func Example_batch() {
	log := logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	})
	defer log.Close()

	yearLog := log.WithYear(2022).WithField("source", "../datasets/pitches_2022.csv")
	yearLog.Infof("cleaned %d of %d rows", 9871, 9900)

	err := errors.New("missing field sz_top")
	yearLog.WithError(err).Error("year failed")
}
