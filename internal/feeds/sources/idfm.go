package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/dashboard-feeds/internal/feeds"
)

// IDFMStopMonitoring implements feeds.StopMonitoringSource for the
// Île-de-France Mobilités PRIM stop-monitoring endpoint.
type IDFMStopMonitoring struct {
	name          string
	apiKey        string
	baseURL       string
	monitoringRef string
	lineRef       string
	httpCfg       HTTPClientConfig
	circuit       *gobreaker.CircuitBreaker
}

func NewIDFMStopMonitoring(cfg HTTPClientConfig, baseURL, apiKey, monitoringRef, lineRef string) *IDFMStopMonitoring {
	return &IDFMStopMonitoring{
		name:          "idfm",
		apiKey:        apiKey,
		baseURL:       baseURL,
		monitoringRef: monitoringRef,
		lineRef:       lineRef,
		httpCfg:       cfg,
		circuit:       newCircuitBreaker("idfm"),
	}
}

func (s *IDFMStopMonitoring) Name() string {
	return s.name
}

func (s *IDFMStopMonitoring) FetchVisits(ctx context.Context) ([]feeds.MonitoredVisit, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("idfm api key is not configured")
	}

	values := url.Values{}
	values.Set("MonitoringRef", s.monitoringRef)
	values.Set("LineRef", s.lineRef)
	u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())

	header := http.Header{}
	header.Set("apikey", s.apiKey)

	resp, err := doRequest(ctx, s.httpCfg, s.circuit, u, header)
	if err != nil {
		return nil, err
	}

	var payload stopMonitoringPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	visits, err := payload.visits()
	if err != nil {
		return nil, err
	}

	out := make([]feeds.MonitoredVisit, 0, len(visits))
	for _, v := range visits {
		j := v.MonitoredVehicleJourney
		out = append(out, feeds.MonitoredVisit{
			PublishedLineNames:  j.PublishedLineName,
			DestinationNames:    j.DestinationName,
			ExpectedArrivalTime: j.MonitoredCall.ExpectedArrivalTime,
			AimedArrivalTime:    j.MonitoredCall.AimedArrivalTime,
		})
	}
	return out, nil
}

// stopMonitoringPayload accepts both the flat shape and the SIRI envelope.
type stopMonitoringPayload struct {
	MonitoredStopVisit *[]monitoredStopVisit `json:"MonitoredStopVisit"`
	Siri               *struct {
		ServiceDelivery struct {
			StopMonitoringDelivery []struct {
				MonitoredStopVisit []monitoredStopVisit `json:"MonitoredStopVisit"`
			} `json:"StopMonitoringDelivery"`
		} `json:"ServiceDelivery"`
	} `json:"Siri"`
}

type monitoredStopVisit struct {
	MonitoredVehicleJourney struct {
		PublishedLineName siriText `json:"PublishedLineName"`
		DestinationName   siriText `json:"DestinationName"`
		MonitoredCall     struct {
			ExpectedArrivalTime string `json:"ExpectedArrivalTime"`
			AimedArrivalTime    string `json:"AimedArrivalTime"`
		} `json:"MonitoredCall"`
	} `json:"MonitoredVehicleJourney"`
}

func (p stopMonitoringPayload) visits() ([]monitoredStopVisit, error) {
	if p.MonitoredStopVisit != nil {
		return *p.MonitoredStopVisit, nil
	}
	if p.Siri != nil {
		var out []monitoredStopVisit
		for _, d := range p.Siri.ServiceDelivery.StopMonitoringDelivery {
			out = append(out, d.MonitoredStopVisit...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no MonitoredStopVisit in payload", feeds.ErrDataValidity)
}

// siriText is a list of names given as strings or {"value": ...} objects,
// either alone or in an array.
type siriText []string

func (t *siriText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}

	if b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		out := make(siriText, 0, len(items))
		for _, item := range items {
			s, err := siriValue(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*t = out
		return nil
	}

	s, err := siriValue(b)
	if err != nil {
		return err
	}
	*t = siriText{s}
	return nil
}

func siriValue(b json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", err
	}
	return obj.Value, nil
}
