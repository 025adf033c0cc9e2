package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/samvad-hq/beer-catalog-client/pkg/logger"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      logger.NopLogger{},
	}

	id := uuid.MustParse("e2735cc7-6958-4da9-966e-715dcc1dc859")
	if err := pub.Publish(context.Background(), NewEvent(ActionCreated, id, 201, nil)); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["beer_id"]
	if !ok || aws.ToString(attr.StringValue) != id.String() {
		t.Fatalf("beer_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if action := client.input.MessageAttributes["action"]; aws.ToString(action.StringValue) != string(ActionCreated) {
		t.Fatalf("action attribute = %#v", action)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"action":"beer.created"`) {
		t.Fatalf("MessageBody missing action: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSPublisherSendError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      logger.NopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{Action: ActionUpdated}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestSQSPublisherGroupsFIFOMessagesByBeer(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/beer-events.fifo",
		fifo:     true,
		client:   client,
		log:      logger.NopLogger{},
	}

	id := uuid.New()
	if err := pub.Publish(context.Background(), NewEvent(ActionUpdated, id, 204, nil)); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.MessageGroupId); got != id.String() {
		t.Fatalf("MessageGroupId = %q", got)
	}
	if aws.ToString(client.input.MessageDeduplicationId) == "" {
		t.Fatalf("MessageDeduplicationId should be set on FIFO queues")
	}
}
