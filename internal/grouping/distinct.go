package grouping

import (
	"github.com/cloudpeak/docpipe/internal/codec"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// DistinctCountField is the output field of the distinct-count pipeline.
const DistinctCountField = "distinctCount"

// DistinctStages extends a base pipeline with the one-shot
// group-then-count sequence for cardinality queries.
func DistinctStages(field string, base []pipeline.Stage) []pipeline.Stage {
	wire := codec.ToWireField(codec.ToInternalField(field))
	stages := append([]pipeline.Stage(nil), base...)
	stages = append(stages,
		pipeline.Group(map[string]any{"_id": "$" + wire}),
		pipeline.Count(DistinctCountField),
	)
	return stages
}

// DecodeDistinctCount reads the count from raw distinct-count output.
// An aggregation matching no documents legitimately produces zero
// groups, so an empty result (or a result without the count field)
// means zero, never an error.
func DecodeDistinctCount(raw []map[string]any) int64 {
	if len(raw) == 0 {
		return 0
	}
	n, err := toInt64(raw[0][DistinctCountField])
	if err != nil {
		return 0
	}
	return n
}
