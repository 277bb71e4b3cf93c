package ppcwire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []Frame{
		NewFrame("task-1", AlgorithmEcdhPSI, MessageType(1), 0, []byte("hello")),
		NewFrame("task-2", AlgorithmCM2020PSI, MessageType(7), 42, nil),
		NewFrame("task-3", AlgorithmOTPIR, MessageType(2), 9, []byte("payload")).WithCorrelation(),
	}

	for _, f := range frames {
		var buf bytes.Buffer
		require.NoError(t, f.Encode(&buf))

		got, err := Decode(&buf)
		require.NoError(t, err)
		require.Equal(t, f.TaskID, got.TaskID)
		require.Equal(t, f.AlgorithmID, got.AlgorithmID)
		require.Equal(t, f.MessageType, got.MessageType)
		require.Equal(t, f.Seq, got.Seq)
		require.Equal(t, f.Payload, got.Payload)
		require.Equal(t, f.HasCorrelation, got.HasCorrelation)
		if f.HasCorrelation {
			require.Equal(t, f.CorrelationID, got.CorrelationID)
		}
	}
}
