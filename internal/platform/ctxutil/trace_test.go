package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogFields(t *testing.T) {
	assert.Nil(t, LogFields(context.Background()))

	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1", RequestID: "r-1"})
	assert.Equal(t, []interface{}{"trace_id", "t-1", "request_id", "r-1"}, LogFields(ctx))

	ctx = WithTraceData(context.Background(), &TraceData{RequestID: "r-2"})
	assert.Equal(t, []interface{}{"request_id", "r-2"}, LogFields(ctx))
}

func TestWithTraceDataNil(t *testing.T) {
	ctx := WithTraceData(context.Background(), nil)
	assert.Nil(t, GetTraceData(ctx))
}
