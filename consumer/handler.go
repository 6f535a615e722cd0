package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/jonwraymond/svcscaffold/observe"
)

// LogTesting decodes each test_topic message as a JSON object and logs it
// under "testing".
func LogTesting(logger observe.Logger) Handler {
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return func(ctx context.Context, msg kafka.Message) error {
		var value map[string]any
		if err := json.Unmarshal(msg.Value, &value); err != nil {
			return fmt.Errorf("decode %s@%d: %w", msg.Topic, msg.Offset, err)
		}
		logger.Info(ctx, "testing", observe.Field{Key: "value", Value: value})
		return nil
	}
}
