package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/network"
)

func testSerializer() *Serializer {
	training := &domain.TrainingSet{
		TotalRecords:  42,
		UniqueStreets: 7,
		Source:        "Road_Closures.csv",
	}
	net := network.New(
		[]network.Node{
			{ID: 0, Name: "FISHBURNE_ST", Count: 6},
			{ID: 1, Name: "HAGOOD_AVE", Count: 5},
		},
		[]network.Edge{
			{Parent: 0, Child: 1, CoCount: 4, ParentCount: 6, Weight: 4.0 / 6.0},
		},
	)
	return NewSerializer(
		RunInfo{ExperimentName: "charleston_flood_twin", Description: "test run", RandomSeed: 42},
		training, net,
		network.Thresholds{Occurrence: 5, Edge: 3, Weight: 0.4},
	)
}

func testReport(index int) domain.WindowReport {
	start := time.Date(2024, 8, 6, 12, 19, 0, 0, time.UTC)
	return domain.WindowReport{
		Window: domain.TimeWindow{
			Index:              index,
			Start:              start,
			End:                start.Add(10 * time.Minute),
			Label:              "12:19-12:29",
			CumulativeEvidence: []string{"FISHBURNE_ST", "NOWHERE_RD"},
			NetworkEvidence:    []string{"FISHBURNE_ST"},
		},
		Predictions: []domain.PredictionRecord{
			{Road: "FISHBURNE_ST", Probability: 1.0, IsEvidence: true},
			{Road: "HAGOOD_AVE", Probability: 4.0 / 6.0},
		},
		AverageProbability: 4.0 / 6.0,
		HighRiskCount:      1,
		NonEvidenceCount:   1,
	}
}

func TestSerializerDocument(t *testing.T) {
	frozen := time.Date(2024, 8, 6, 13, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	s := testSerializer()

	t.Run("assembles full document", func(t *testing.T) {
		doc, err := s.Document(testReport(1))
		require.NoError(t, err)

		assert.Equal(t, "charleston_flood_twin", doc.ExperimentMetadata.ExperimentName)
		assert.Equal(t, "2024-08-06T13:00:00Z", doc.ExperimentMetadata.Timestamp)
		assert.Equal(t, int64(42), doc.ExperimentMetadata.RandomSeed)

		assert.Equal(t, 42, doc.TrainingDataInfo.TotalRecords)
		assert.Equal(t, "Road_Closures.csv", doc.TrainingDataInfo.DataSource)

		assert.Equal(t, 5, doc.BayesianNetwork.Parameters.OccThr)
		assert.Equal(t, 2, doc.BayesianNetwork.Statistics.TotalNodes)
		assert.Equal(t, 1, doc.BayesianNetwork.Statistics.TotalEdges)
		assert.Equal(t, []string{"FISHBURNE_ST", "HAGOOD_AVE"}, doc.BayesianNetwork.AllNodes)

		assert.Equal(t, 1, doc.CurrentWindow.WindowID)
		assert.Equal(t, "12:19-12:29", doc.CurrentWindow.WindowLabel)
		assert.Equal(t, 2, doc.CurrentWindow.Evidence.EvidenceCount)
		assert.Equal(t, 1, doc.CurrentWindow.Evidence.NetworkEvidenceCount)
		assert.Equal(t, 1, doc.CurrentWindow.SummaryStats.HighRiskRoadsCount)
		assert.Equal(t, 1, doc.CurrentWindow.SummaryStats.TotalNonEvidenceRoads)
	})

	t.Run("wire field names", func(t *testing.T) {
		doc, err := s.Document(testReport(1))
		require.NoError(t, err)

		payload, err := json.Marshal(doc)
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(payload, &raw))
		for _, key := range []string{"experiment_metadata", "training_data_info", "bayesian_network", "current_window"} {
			assert.Contains(t, raw, key)
		}

		var win map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["current_window"], &win))
		for _, key := range []string{"window_id", "window_label", "evidence", "predictions", "summary_stats"} {
			assert.Contains(t, win, key)
		}

		var preds []map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(win["predictions"], &preds))
		require.NotEmpty(t, preds)
		for _, key := range []string{"road", "probability", "is_evidence"} {
			assert.Contains(t, preds[0], key)
		}
	})

	t.Run("round trips through Parse", func(t *testing.T) {
		doc, err := s.Document(testReport(1))
		require.NoError(t, err)

		payload, err := json.MarshalIndent(doc, "", "  ")
		require.NoError(t, err)

		parsed, err := Parse(payload)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(doc, parsed))
	})

	t.Run("rejects inconsistent reports", func(t *testing.T) {
		broken := testReport(1)
		broken.Predictions = broken.Predictions[:1]
		_, err := s.Document(broken)
		require.Error(t, err)

		broken = testReport(1)
		broken.Predictions[1].Probability = 1.7
		_, err = s.Document(broken)
		require.Error(t, err)

		broken = testReport(1)
		broken.Predictions[0].Probability = 0.9 // evidence not pinned
		_, err = s.Document(broken)
		require.Error(t, err)

		broken = testReport(0)
		_, err = s.Document(broken)
		require.Error(t, err)
	})
}
