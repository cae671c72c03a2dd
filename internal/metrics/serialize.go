package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Converts internal metric type to export (JSON) metric
func (inMetric Metric) Convert() (outMetric JMetric) {
	outMetric.Name = inMetric.Name
	outMetric.Description = inMetric.Description
	outMetric.Namespace = strings.Join(inMetric.Namespace, "/")
	outMetric.Type = string(inMetric.Type)
	outMetric.Value.Unit = inMetric.Value.Unit
	outMetric.Value.Interval = inMetric.Value.Interval.String()
	outMetric.Value.Raw = fmt.Sprintf("%v", inMetric.Value.Raw)
	if !inMetric.Timestamp.IsZero() {
		outMetric.Timestamp = inMetric.Timestamp.Format(time.RFC3339Nano)
	}
	return
}

// Numeric form of a raw value
func (value MetricValue) Float() (number float64, err error) {
	switch raw := value.Raw.(type) {
	case float64:
		number = raw
	case float32:
		number = float64(raw)
	case uint64:
		number = float64(raw)
	case uint32:
		number = float64(raw)
	case int64:
		number = float64(raw)
	case int:
		number = float64(raw)
	case string:
		number, err = strconv.ParseFloat(raw, 64)
	default:
		err = fmt.Errorf("metric value of type %T is not numeric", value.Raw)
	}
	return
}
