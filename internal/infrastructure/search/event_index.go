// Package search mirrors events into Elasticsearch for full-text lookup.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/pkg/helpers"
)

const maxSearchSize = 50

const eventsMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "title":         {"type": "text"},
      "description":   {"type": "text"},
      "category":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "status":        {"type": "keyword"},
      "author":        {"type": "keyword"},
      "streaming_url": {"type": "keyword", "index": false},
      "start_at":      {"type": "date"},
      "end_at":        {"type": "date"}
    }
  }
}`

type EventIndex struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
}

func NewEventIndex(es *elasticsearch.Client, index string) *EventIndex {
	return &EventIndex{ES: es, Index: index, Timeout: 3 * time.Second}
}

type eventDoc struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	Author       string `json:"author"`
	StreamingURL string `json:"streaming_url"`
	StartAt      string `json:"start_at"`
	EndAt        string `json:"end_at"`
}

func toDoc(e entity.Event) eventDoc {
	return eventDoc{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Category:     e.Category,
		Status:       e.Status,
		Author:       e.Author,
		StreamingURL: e.StreamingURL,
		StartAt:      e.StartAt.UTC().Format(time.RFC3339Nano),
		EndAt:        e.EndAt.UTC().Format(time.RFC3339Nano),
	}
}

// EnsureIndex creates the events index if it is missing.
func (x *EventIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	return helpers.ESEnsureIndex(c, x.ES, x.Index, eventsMapping)
}

func (x *EventIndex) Index(ctx context.Context, e entity.Event) error {
	b, err := json.Marshal(toDoc(e))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: e.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index event %s: %s", e.ID, res.Status())
	}
	return nil
}

// Remove deletes the document for id. A missing document is not an error.
func (x *EventIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete event %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over title, description and category and
// returns the matching ids by score.
func (x *EventIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	if size <= 0 || size > maxSearchSize {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "category^2", "description"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search events: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}
