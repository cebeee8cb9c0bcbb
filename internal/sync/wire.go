package sync

import (
	"encoding/json"
	"fmt"
	"strings"

	"planboard/internal/model"
)

// pushMessage is the frame the server's hub broadcasts. Type is
// "<entity><Action>", e.g. "cardCreate", "listDelete"; Item is the full row.
type pushMessage struct {
	Type string          `json:"type"`
	Item json.RawMessage `json:"item"`
}

const (
	actionCreate = "Create"
	actionUpdate = "Update"
	actionDelete = "Delete"
)

func splitType(t string) (model.Kind, string, error) {
	for _, action := range []string{actionCreate, actionUpdate, actionDelete} {
		if strings.HasSuffix(t, action) {
			return model.Kind(strings.TrimSuffix(t, action)), action, nil
		}
	}
	return "", "", fmt.Errorf("unrecognized push type %q", t)
}

// decodeItem unpacks a full-row JSON payload into the id and the merge patch
// for the given entity kind. Decoding a full row into the patch type marks
// every attribute present, which is exactly the merge the store expects.
func decodeItem(kind model.Kind, raw []byte) (string, any, error) {
	switch kind {
	case model.KindBoard:
		var item struct {
			ID string `json:"id"`
			model.BoardPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.BoardPatch, nil
	case model.KindList:
		var item struct {
			ID string `json:"id"`
			model.ListPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.ListPatch, nil
	case model.KindCard:
		var item struct {
			ID string `json:"id"`
			model.CardPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.CardPatch, nil
	case model.KindTask:
		var item struct {
			ID string `json:"id"`
			model.TaskPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.TaskPatch, nil
	case model.KindLabel:
		var item struct {
			ID string `json:"id"`
			model.LabelPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.LabelPatch, nil
	case model.KindMembership:
		var item struct {
			ID string `json:"id"`
			model.MembershipPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.MembershipPatch, nil
	case model.KindAttachment:
		var item struct {
			ID string `json:"id"`
			model.AttachmentPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.AttachmentPatch, nil
	case model.KindComment:
		var item struct {
			ID string `json:"id"`
			model.CommentPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.CommentPatch, nil
	case model.KindUser:
		var item struct {
			ID string `json:"id"`
			model.UserPatch
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return "", nil, err
		}
		return item.ID, item.UserPatch, nil
	default:
		return "", nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}
