package res

import "time"

// TimeFormat is used for every timestamp rendered in a response.
const TimeFormat = time.RFC3339

type CommonResponse[T any] struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
}
