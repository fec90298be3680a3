package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-2")}, nil
}

func sampleEvent() Event {
	return NewEvent("vision-probe", domain.RunEvent{
		RunID:   "run-42",
		Tool:    domain.ToolLookalike,
		Success: false,
	})
}

func TestSQSPublisherSendsEventWithAttributes(t *testing.T) {
	client := &fakeSQS{}
	pub := &sqsPublisher{id: "q", typ: TypeSQS, queueURL: "https://sqs.local/queue", client: client, log: noopLogger{}}

	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(client.input.QueueUrl) != "https://sqs.local/queue" {
		t.Fatalf("unexpected queue url %q", aws.ToString(client.input.QueueUrl))
	}
	var body Event
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &body); err != nil {
		t.Fatalf("body is not an event: %v", err)
	}
	if body.Run.RunID != "run-42" {
		t.Fatalf("unexpected run id %q", body.Run.RunID)
	}
	if attr := client.input.MessageAttributes["tool"]; aws.ToString(attr.StringValue) != domain.ToolLookalike {
		t.Fatalf("tool attribute missing, got %#v", attr)
	}
	if attr := client.input.MessageAttributes["success"]; aws.ToString(attr.StringValue) != "false" {
		t.Fatalf("success attribute wrong, got %#v", attr)
	}
}

func TestSQSPublisherWrapsError(t *testing.T) {
	boom := errors.New("throttled")
	pub := &sqsPublisher{id: "q", typ: TypeSQS, queueURL: "u", client: &fakeSQS{err: boom}, log: noopLogger{}}

	err := pub.Publish(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSNSPublisherSendsEvent(t *testing.T) {
	client := &fakeSNS{}
	pub := &snsPublisher{id: "t", typ: TypeSNS, topicARN: "arn:aws:sns:us-east-1:000000000000:runs", client: client, log: noopLogger{}}

	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(client.input.TopicArn) != "arn:aws:sns:us-east-1:000000000000:runs" {
		t.Fatalf("unexpected topic %q", aws.ToString(client.input.TopicArn))
	}
	if aws.ToString(client.input.Subject) != "vision-probe lookalike" {
		t.Fatalf("unexpected subject %q", aws.ToString(client.input.Subject))
	}
	if _, ok := client.input.MessageAttributes["tool"]; !ok {
		t.Fatalf("expected tool attribute")
	}
}

func TestSNSPublisherWrapsError(t *testing.T) {
	boom := errors.New("denied")
	pub := &snsPublisher{id: "t", typ: TypeSNS, topicARN: "arn", client: &fakeSNS{err: boom}, log: noopLogger{}}

	if err := pub.Publish(context.Background(), sampleEvent()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestBuildSQSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "q",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL: "http://localhost:4566/000000000000/runs",
			AWSAccess: AWSAccess{
				Region:          "us-east-1",
				Endpoint:        "http://localhost:4566",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSPublisher: %v", err)
	}
	if pub.Type() != TypeSQS || pub.ID() != "q" {
		t.Fatalf("unexpected publisher %s/%s", pub.Type(), pub.ID())
	}
}
