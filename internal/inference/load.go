package inference

import (
	"context"
	"fmt"

	"github.com/Skufu/heartrisk/internal/artifacts"
	"github.com/Skufu/heartrisk/internal/features"
)

// ArtifactNames are the store keys of the two artifacts.
type ArtifactNames struct {
	Scaler     string
	Classifier string
}

// ArtifactLoadError reports an artifact that could not be fetched, decoded
// or paired. Nothing can be served until it is resolved.
type ArtifactLoadError struct {
	Artifact string
	Source   string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load artifact %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("load artifact %s from %s: %v", e.Artifact, e.Source, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// LoadAdapter fetches and decodes both artifacts and checks that they were
// fitted on the encoder's columns.
func LoadAdapter(ctx context.Context, store artifacts.Store, names ArtifactNames) (*Adapter, error) {
	scalerBlob, err := store.Fetch(ctx, names.Scaler)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: names.Scaler, Err: err}
	}
	scaler, err := DecodeScaler(scalerBlob)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: names.Scaler, Source: scalerBlob.Source, Err: err}
	}

	modelBlob, err := store.Fetch(ctx, names.Classifier)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: names.Classifier, Err: err}
	}
	classifier, err := DecodeClassifier(modelBlob)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: names.Classifier, Source: modelBlob.Source, Err: err}
	}

	adapter, err := NewAdapter(scaler, classifier)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: names.Classifier, Source: modelBlob.Source, Err: err}
	}
	if err := sameColumns(adapter.FeatureNames(), features.ColumnNames()); err != nil {
		return nil, &ArtifactLoadError{Artifact: names.Scaler, Source: scalerBlob.Source, Err: err}
	}
	return adapter, nil
}
