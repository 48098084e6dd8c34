package validator_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/paulmach/orb"
	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoparquet"
	"github.com/planetlabs/gpq/internal/validator"
	"github.com/stretchr/testify/require"
)

func buildParquet(t *testing.T, geomMetadata *geoparquet.Metadata) []byte {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "geometry", Type: arrow.BinaryTypes.Binary, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	buf := &bytes.Buffer{}
	writer, err := geoparquet.NewFeatureWriter(&geoparquet.WriterConfig{
		Writer:      buf,
		Metadata:    geomMetadata,
		ArrowSchema: schema,
	})
	require.NoError(t, err)

	features := []*geo.Feature{
		{Type: "Feature", Geometry: orb.Point{1, 2}, Properties: map[string]any{"name": "a"}},
		{Type: "Feature", Geometry: orb.Point{3, 4}, Properties: map[string]any{"name": "b"}},
	}
	for _, f := range features {
		require.NoError(t, writer.Write(f))
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestValidateValidFile(t *testing.T) {
	data := buildParquet(t, geoparquet.DefaultMetadata())

	v := validator.New(false)
	report, err := v.Validate(context.Background(), bytes.NewReader(data), "test.parquet")
	require.NoError(t, err)

	for _, check := range report.Checks {
		require.Truef(t, check.Passed, "check %q failed: %s", check.Title, check.Message)
	}
}

func TestValidateMetadataOnly(t *testing.T) {
	data := buildParquet(t, geoparquet.DefaultMetadata())

	v := validator.New(true)
	report, err := v.Validate(context.Background(), bytes.NewReader(data), "test.parquet")
	require.NoError(t, err)
	require.True(t, report.MetadataOnly)

	for _, check := range report.Checks {
		require.Truef(t, check.Passed, "check %q failed: %s", check.Title, check.Message)
	}
}

func TestValidateBadEncoding(t *testing.T) {
	badMetadata := geoparquet.DefaultMetadata()
	// FeatureWriter can write WKT, but the validator accepts only WKB.
	badMetadata.Columns["geometry"].Encoding = geo.EncodingWKT
	data := buildParquet(t, badMetadata)

	v := validator.New(true)
	report, err := v.Validate(context.Background(), bytes.NewReader(data), "test.parquet")
	require.NoError(t, err)

	foundFailure := false
	for _, check := range report.Checks {
		if check.Title == `column metadata must include a valid "encoding" string` {
			require.False(t, check.Passed)
			foundFailure = true
		}
	}
	require.True(t, foundFailure, "expected the encoding check to run and fail")
}
