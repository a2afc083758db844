package models

import (
	"sort"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/askchat/internal/errors"
)

// AskRequest is the body sent to the ask endpoint and as the first stream frame
type AskRequest struct {
	Question string `json:"question"`
}

// ParseAnswer extracts the answer from a non-streaming reply.
// A body that is not JSON, or whose answer is missing or not a string, is rejected.
func ParseAnswer(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("reply is not valid JSON", "")
	}
	answer := gjson.GetBytes(body, "answer")
	if !answer.Exists() {
		return "", apierrors.NewParseError("reply has no answer", "answer")
	}
	if answer.Type != gjson.String {
		return "", apierrors.NewParseError("answer is not a string", "answer")
	}
	return answer.String(), nil
}

// Endpoint describes one route advertised by the service banner
type Endpoint struct {
	Route       string
	Description string
}

// ServiceInfo is the banner returned by the service root
type ServiceInfo struct {
	Message   string
	Endpoints []Endpoint
}

// ParseServiceInfo decodes the service banner. Endpoints are sorted by route.
func ParseServiceInfo(body []byte) (*ServiceInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("banner is not valid JSON", "")
	}
	root := gjson.ParseBytes(body)
	msg := root.Get("message")
	if !msg.Exists() {
		return nil, apierrors.NewParseError("banner has no message", "message")
	}

	info := &ServiceInfo{Message: msg.String()}
	root.Get("endpoints").ForEach(func(key, value gjson.Result) bool {
		info.Endpoints = append(info.Endpoints, Endpoint{
			Route:       key.String(),
			Description: value.String(),
		})
		return true
	})
	sort.Slice(info.Endpoints, func(i, j int) bool {
		return info.Endpoints[i].Route < info.Endpoints[j].Route
	})
	return info, nil
}
