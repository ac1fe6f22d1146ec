package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader replays a scripted sequence of fetch results.
type fakeReader struct {
	fetches   []fetchResult
	next      int
	committed []kafka.Message
	closed    bool
}

type fetchResult struct {
	msg kafka.Message
	err error
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if f.next >= len(f.fetches) {
		return kafka.Message{}, context.DeadlineExceeded
	}
	result := f.fetches[f.next]
	f.next++
	return result.msg, result.err
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func newTestQueue(reader messageReader, maxSnapshot int) *Queue {
	return &Queue{
		reader:      reader,
		pollTimeout: 50 * time.Millisecond,
		maxSnapshot: maxSnapshot,
		logger:      slog.New(slog.DiscardHandler),
	}
}

func message(offset int64, body string) kafka.Message {
	return kafka.Message{Topic: "wms.pick-completions", Partition: 0, Offset: offset, Value: []byte(body)}
}

func TestDrainReturnsSnapshotAndCommits(t *testing.T) {
	reader := &fakeReader{fetches: []fetchResult{
		{msg: message(7, `{"id": 101}`)},
		{msg: message(8, `{"id": 102}`)},
	}}
	queue := newTestQueue(reader, 5000)

	messages, err := queue.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "wms.pick-completions-0-7", messages[0].MessageID)
	assert.Equal(t, `{"id": 101}`, messages[0].Body)
	assert.Len(t, reader.committed, 2)
}

func TestDrainEmptyTopic(t *testing.T) {
	reader := &fakeReader{}
	queue := newTestQueue(reader, 5000)

	messages, err := queue.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Empty(t, reader.committed)
}

func TestDrainKeepsFetchedMessagesOnMidDrainFailure(t *testing.T) {
	reader := &fakeReader{fetches: []fetchResult{
		{msg: message(7, `{"id": 101}`)},
		{err: errors.New("broker gone")},
	}}
	queue := newTestQueue(reader, 5000)

	// The first message's offset will be committed, so it must reach the
	// caller despite the failure ending the snapshot early.
	messages, err := queue.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, `{"id": 101}`, messages[0].Body)
	assert.Len(t, reader.committed, 1)
}

func TestDrainFailureBeforeAnyFetchIsAnError(t *testing.T) {
	reader := &fakeReader{fetches: []fetchResult{
		{err: errors.New("broker gone")},
	}}
	queue := newTestQueue(reader, 5000)

	messages, err := queue.Drain(context.Background())
	assert.Error(t, err)
	assert.Empty(t, messages)
	assert.Empty(t, reader.committed)
}

func TestDrainHonorsSnapshotBound(t *testing.T) {
	reader := &fakeReader{fetches: []fetchResult{
		{msg: message(1, `a`)},
		{msg: message(2, `b`)},
		{msg: message(3, `c`)},
	}}
	queue := newTestQueue(reader, 2)

	messages, err := queue.Drain(context.Background())
	require.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Len(t, reader.committed, 2)
}

func TestClose(t *testing.T) {
	reader := &fakeReader{}
	queue := newTestQueue(reader, 5000)

	require.NoError(t, queue.Close())
	assert.True(t, reader.closed)
}
