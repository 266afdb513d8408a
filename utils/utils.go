package utils

import (
	"fmt"
	"time"

	"github.com/rickb777/period"
	"github.com/schollz/progressbar/v3"
)

func NewBar(size int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(size,
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Elapsed renders a duration as an ISO-8601 period for summaries and the
// processing log, e.g. "PT1M32.5S".
func Elapsed(d time.Duration) string {
	p := period.NewOf(d)
	return p.String()
}
