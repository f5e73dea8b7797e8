package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
)

// LoadTraining opens and parses the historical closure CSV.
func LoadTraining(path string, logger *slog.Logger) (*domain.TrainingSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training data: %w", err)
	}
	defer f.Close()
	return domain.LoadClosures(f, path, logger)
}

// FileSource reads the observation stream from a CSV file. It is the
// default ObservationSource; the Kafka adapter is the other.
type FileSource struct {
	Path   string
	Logger *slog.Logger
}

func (s *FileSource) Observations(_ context.Context) ([]domain.Observation, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open observation data: %w", err)
	}
	defer f.Close()
	return domain.LoadObservations(f, s.Path, s.Logger)
}
