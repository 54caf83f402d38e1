// Package search maintains a best-effort Elasticsearch mirror of the
// task table. Postgres stays the source of truth; the index only serves
// the free-text search endpoint and read failures never block writes.
package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
)

type TaskIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewTaskIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *TaskIndex {
	return &TaskIndex{ES: es, Index: index, Logger: logger}
}

// Enabled reports whether the index is configured.
func (i *TaskIndex) Enabled() bool {
	return i != nil && i.ES != nil && i.Index != ""
}

// IndexTask upserts the task document. Failures are logged, not returned
// to the caller's request path.
func (i *TaskIndex) IndexTask(ctx context.Context, t *entity.Task) {
	if !i.Enabled() {
		return
	}
	doc := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"assigned_to": t.AssignedTo,
		"created_by":  t.CreatedBy,
		"created_at":  t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: i.Index, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		if i.Logger != nil {
			i.Logger.WithError(err).WithField("task_id", t.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && i.Logger != nil {
		i.Logger.WithField("status", res.Status()).WithField("task_id", t.ID).Warn("es index response error")
	}
}

// RemoveTask deletes the task document after a task is destroyed.
func (i *TaskIndex) RemoveTask(ctx context.Context, id string) {
	if !i.Enabled() {
		return
	}
	req := esapi.DeleteRequest{Index: i.Index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		if i.Logger != nil {
			i.Logger.WithError(err).WithField("task_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match over title and description. assignedTo, when
// non-empty, is applied as a term filter (the member scope filter).
func (i *TaskIndex) Search(ctx context.Context, q, assignedTo string, size int) ([]map[string]any, error) {
	if !i.Enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}

	must := []map[string]any{{
		"multi_match": map[string]any{
			"query":  q,
			"fields": []string{"title^2", "description"},
		},
	}}
	query := map[string]any{"bool": map[string]any{"must": must}}
	if assignedTo != "" {
		query["bool"].(map[string]any)["filter"] = []map[string]any{
			{"term": map[string]any{"assigned_to.keyword": assignedTo}},
		}
	}
	body := map[string]any{"query": query, "size": size}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := i.ES.Search(
		i.ES.Search.WithContext(c),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
