package result_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"statml/pkg/result"
)

func TestStatisticJSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(result.NewStatistic("mean", 3, 2.5))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"statistic","name":"mean","n":3,"value":2.5}`, string(data))

	var back result.Statistic
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, result.NewStatistic("mean", 3, 2.5), back)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		data, err := json.Marshal(result.NewStatistic("mean", 0, v))
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"statistic","name":"mean","n":0,"value":null}`, string(data))

		require.NoError(t, json.Unmarshal(data, &back))
		require.Equal(t, result.TypeStatistic, back.Type)
		require.Equal(t, "mean", back.Name)
		require.True(t, math.IsNaN(back.Value))
	}

	data, err = json.Marshal([]result.Statistic{result.NewStatistic("max", 0, math.NaN())})
	require.NoError(t, err)
	require.JSONEq(t, `[{"type":"statistic","name":"max","n":0,"value":null}]`, string(data))
}
