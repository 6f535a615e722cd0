// Package consumer reads a Kafka topic as part of a consumer group and
// hands each message to a Handler.
//
// Messages are committed after the handler returns. A handler error is
// logged and the message is still committed, so one undecodable record
// cannot stall the partition.
//
//	c, err := consumer.New(consumer.Config{
//	    Brokers: []string{"localhost:9092"},
//	    GroupID: "orders",
//	    Topic:   "test_topic",
//	}, consumer.LogTesting(logger), consumer.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	return c.Run(ctx)
package consumer
