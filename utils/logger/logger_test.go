package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type named struct{}

func (named) String() string { return "splitter" }

type plain struct{}

func TestObjToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  any
		want string
	}{
		{"nil", nil, "NIL"},
		{"stringer", named{}, "splitter"},
		{"string", "cli", "cli"},
		{"type name", plain{}, "plain"},
		{"pointer", &plain{}, "plain"},
		{"truncated", "a-very-long-object-name-indeed", "a-very-long-object-n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, objToString(tt.obj))
		})
	}
}

// Not parallel: the logrus standard logger is global.
func TestLevelFiltering(t *testing.T) {
	var out bytes.Buffer
	prev := logrus.StandardLogger().Out
	logrus.SetOutput(&out)
	defer logrus.SetOutput(prev)
	Init(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	Debugf("cut", "skip=%d", 10)
	require.Empty(t, out.String())

	Infof("cut", "skip=%d", 10)
	require.Contains(t, out.String(), "|                 cut|skip=10")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}
