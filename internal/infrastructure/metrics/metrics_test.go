package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRemote_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(RemoteErrorsTotal.WithLabelValues("upload"))

	ObserveRemote("upload", time.Now(), nil)
	require.Equal(t, before, testutil.ToFloat64(RemoteErrorsTotal.WithLabelValues("upload")))

	ObserveRemote("upload", time.Now(), errors.New("boom"))
	require.Equal(t, before+1, testutil.ToFloat64(RemoteErrorsTotal.WithLabelValues("upload")))
}

func TestRegister_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Register()
		Register()
	})
}
