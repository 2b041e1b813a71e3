package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/common"
)

func TestShowRuns(t *testing.T) {
	setEnv(t)
	env, cleanup, err := Setup(context.Background(), Options{LogWriter: &bytes.Buffer{}})
	require.NoError(t, err)
	defer cleanup()

	var runID string
	require.NoError(t, env.Track(context.Background(), "build-db", func(ctx context.Context) (map[string]any, error) {
		runID = common.RunIDFromContext(ctx)
		return map[string]any{"serials": 3}, nil
	}))
	_ = env.Track(context.Background(), "verify", func(context.Context) (map[string]any, error) {
		return nil, common.NewAppError("X", "bad", common.ErrValidation)
	})

	t.Run("should print recent runs as json lines", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, env.ShowRuns(context.Background(), &out, "", 10))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		var views []RunView
		for _, line := range lines {
			var v RunView
			require.NoError(t, json.Unmarshal([]byte(line), &v))
			views = append(views, v)
		}
		commands := []string{views[0].Command, views[1].Command}
		assert.ElementsMatch(t, []string{"build-db", "verify"}, commands)
		for _, v := range views {
			if v.Command == "verify" {
				assert.Equal(t, string(constants.RunStatusFailed), v.Status)
				assert.Contains(t, v.Error, "bad")
			}
		}
	})

	t.Run("should honor the limit", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, env.ShowRuns(context.Background(), &out, "", 1))
		assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	})

	t.Run("should print a single run with its stats", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, env.ShowRuns(context.Background(), &out, runID, 0))
		var v RunView
		require.NoError(t, json.Unmarshal(out.Bytes(), &v))
		assert.Equal(t, runID, v.ID)
		assert.Equal(t, string(constants.RunStatusOK), v.Status)
		assert.NotEmpty(t, v.FinishedAt)
		assert.JSONEq(t, `{"serials":3}`, string(v.Stats))
	})

	t.Run("should reject an unknown run id", func(t *testing.T) {
		err := env.ShowRuns(context.Background(), &bytes.Buffer{}, "missing", 0)
		require.Error(t, err)
		assert.Equal(t, 2, common.ExitCode(err))
	})

	t.Run("should fail without a ledger", func(t *testing.T) {
		bare := &Env{Config: env.Config, Logger: env.Logger}
		err := bare.ShowRuns(context.Background(), &bytes.Buffer{}, "", 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrStorage)
	})
}
