package tools

import (
	"context"
	"fmt"
	"time"
)

// CurrentDateInput represents the input parameters for the CurrentDate function.
type CurrentDateInput struct {
	Format   string `json:"format,omitempty" jsonschema_description:"Time format string according to Go's time formatting conventions, default format is : 2006-01-02T15:04:05Z07:00"`
	Location string `json:"location,omitempty" jsonschema_description:"IANA time zone identifier (e.g., 'Europe/Berlin', 'America/New_York'), default UTC"`
}

type CurrentDateOutput struct {
	CurrentTime string `json:"currentTime" jsonschema_description:"Current time formatted as per input parameters"`
}

// CurrentDate lets the model date articles and judge how recent its
// sources are.
func CurrentDate(ctx context.Context, input CurrentDateInput) (CurrentDateOutput, error) {
	format := input.Format
	if format == "" {
		format = time.RFC3339
	}

	loc := time.UTC
	if input.Location != "" {
		var err error
		loc, err = time.LoadLocation(input.Location)
		if err != nil {
			return CurrentDateOutput{}, fmt.Errorf("invalid location: %v", err)
		}
	}

	return CurrentDateOutput{CurrentTime: now().In(loc).Format(format)}, nil
}

var now = time.Now
