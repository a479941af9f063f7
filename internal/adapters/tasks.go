// Package adapters normalizes upstream task-service payloads into the
// stable shape route handlers are promised.
//
// DESIGN: The upstream returns task data in several shapes depending on
// endpoint: a bare array, a flat {tasks,total,limit,offset} page, or a
// single object. All of them come out of here as either a single
// normalized item or a {tasks, pagination} page. Pagination metadata is
// always recomputed, never trusted verbatim.
//
// FILES:
//   - tasks.go: shape detection, item adaptation, pagination synthesis
//   - enums.go: status/priority alias maps
package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Pagination is the derived page metadata attached to every task list.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Paginate derives page metadata from flat offset-style counters.
// limit <= 0 would divide by zero; such responses are treated as one page
// holding everything.
func Paginate(total, limit, offset int) Pagination {
	if total < 0 {
		total = 0
	}
	if limit <= 0 {
		return Pagination{CurrentPage: 1, PageSize: total, TotalCount: total, TotalPages: 1}
	}
	currentPage := offset/limit + 1
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage: currentPage,
		PageSize:    limit,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNext:     currentPage < totalPages,
		HasPrev:     currentPage > 1,
	}
}

// backfill lists contract-required fields with their default JSON values.
// Applied only when the upstream omits the field; present values are never
// overwritten.
var backfill = []struct {
	field string
	raw   string
}{
	{"parent_id", "null"},
	{"tags", "[]"},
	{"service_ids", "[]"},
	{"planned_start_time", "null"},
	{"planned_end_time", "null"},
	{"last_claimed_date", "null"},
	{"is_deleted", "false"},
	{"completion_percentage", "0.0"},
}

// AdaptItem normalizes one task object: enum casing plus back-filled
// defaults. Idempotent on already-normalized items.
func AdaptItem(item string) (string, error) {
	var err error
	if s := gjson.Get(item, "status"); s.Exists() {
		item, err = sjson.Set(item, "status", NormalizeStatus(s.String()))
		if err != nil {
			return "", fmt.Errorf("setting status: %w", err)
		}
	}
	if p := gjson.Get(item, "priority"); p.Exists() {
		item, err = sjson.Set(item, "priority", NormalizePriority(p.String()))
		if err != nil {
			return "", fmt.Errorf("setting priority: %w", err)
		}
	}
	for _, bf := range backfill {
		if gjson.Get(item, bf.field).Exists() {
			continue
		}
		item, err = sjson.SetRaw(item, bf.field, bf.raw)
		if err != nil {
			return "", fmt.Errorf("back-filling %s: %w", bf.field, err)
		}
	}
	return item, nil
}

// AdaptData normalizes an upstream data payload into the stable contract
// shape. Non-task payloads (counters, plain strings, null) pass through
// unchanged.
func AdaptData(raw []byte) (json.RawMessage, error) {
	parsed := gjson.ParseBytes(raw)

	switch {
	case parsed.IsArray():
		items, err := adaptArray(parsed)
		if err != nil {
			return nil, err
		}
		return buildPage(items, Paginate(len(items), len(items), 0)), nil

	case parsed.IsObject():
		if tasks := parsed.Get("tasks"); tasks.Exists() && tasks.IsArray() {
			items, err := adaptArray(tasks)
			if err != nil {
				return nil, err
			}
			total := len(items)
			if t := parsed.Get("total"); t.Exists() {
				total = int(t.Int())
			}
			limit := total
			if l := parsed.Get("limit"); l.Exists() {
				limit = int(l.Int())
			}
			offset := int(parsed.Get("offset").Int())
			return buildPage(items, Paginate(total, limit, offset)), nil
		}
		if looksLikeTask(parsed) {
			out, err := AdaptItem(parsed.Raw)
			if err != nil {
				return nil, err
			}
			return json.RawMessage(out), nil
		}
		return json.RawMessage(raw), nil

	default:
		// Bare strings, numbers, null: not task-shaped, nothing to adapt.
		return json.RawMessage(raw), nil
	}
}

// looksLikeTask reports whether an object is a task resource. Adaptation
// must not back-fill task fields onto unrelated objects like
// {"count": 12} from the pomodoro counter.
func looksLikeTask(obj gjson.Result) bool {
	if obj.Get("status").Exists() || obj.Get("priority").Exists() {
		return true
	}
	return obj.Get("id").Exists() && obj.Get("title").Exists()
}

func adaptArray(arr gjson.Result) ([]string, error) {
	var items []string
	var adaptErr error
	arr.ForEach(func(_, item gjson.Result) bool {
		adapted, err := AdaptItem(item.Raw)
		if err != nil {
			adaptErr = err
			return false
		}
		items = append(items, adapted)
		return true
	})
	if adaptErr != nil {
		return nil, adaptErr
	}
	return items, nil
}

func buildPage(items []string, p Pagination) json.RawMessage {
	pag, _ := json.Marshal(p)
	out, _ := sjson.SetRaw(`{}`, "tasks", "["+strings.Join(items, ",")+"]")
	out, _ = sjson.SetRaw(out, "pagination", string(pag))
	return json.RawMessage(out)
}
