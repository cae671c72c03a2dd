package server

import (
	"context"
	"net/http"
	"smcp/internal/global"
	"smcp/internal/metrics"
	"strings"
	"time"
)

const defaultWindow time.Duration = time.Minute

// Handles metric search requests based on time for data
func handleData(baseCtx context.Context, search DataSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	rawNamespace := strings.Trim(strings.TrimPrefix(clientRequest.URL.Path, global.DataPath), "/")
	var reqNamespace []string
	if rawNamespace != "" {
		reqNamespace = strings.Split(rawNamespace, "/")
	}

	reqName := clientRequest.FormValue("name")

	now := time.Now()
	reqStartTime, ok := parseStartTime(clientRequest.FormValue("starttime"), now)
	if !ok {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	rawEndTime := clientRequest.FormValue("endtime")
	reqEndTime := now // Default end is now
	if rawEndTime != "now" && rawEndTime != "" {
		var err error
		reqEndTime, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			serverResponder.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	if reqStartTime.After(reqEndTime) {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	// Query internal metric registry
	rawResults := search(reqName, reqNamespace, reqStartTime, reqEndTime)

	var results []metrics.JMetric
	for _, rawResult := range rawResults {
		results = append(results, rawResult.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, serverResponder, Jerror{Msg: "Search returned no results"})
	} else {
		jResp(baseCtx, serverResponder, results)
	}
}

// Absolute RFC3339 or a signed duration relative to now. Unparseable durations fall back to the last minute.
func parseStartTime(raw string, now time.Time) (start time.Time, ok bool) {
	ok = true
	switch {
	case raw == "":
		start = now.Add(-defaultWindow)
	case raw[0] == '-' || raw[0] == '+':
		offset, err := time.ParseDuration(raw)
		if err != nil {
			offset = -defaultWindow
		}
		start = now.Add(offset)
	default:
		var err error
		start, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			ok = false
		}
	}
	return
}
