package store

import "planboard/internal/model"

// Read surface for the rendering layer. Every accessor returns copies; the
// rendering layer never mutates tables directly.

// Has reports whether a row of the given kind currently exists.
func (s *Store) Has(kind model.Kind, id string) bool {
	r, ok := s.reducers[kind]
	return ok && r.has(id)
}

func (s *Store) Board(id string) (model.Board, bool) { return s.boards.Get(id) }

func (s *Store) List(id string) (model.List, bool) { return s.lists.Get(id) }

func (s *Store) Card(id string) (model.Card, bool) { return s.cards.Get(id) }

func (s *Store) Task(id string) (model.Task, bool) { return s.tasks.Get(id) }

func (s *Store) Label(id string) (model.Label, bool) { return s.labels.Get(id) }

func (s *Store) Membership(id string) (model.Membership, bool) { return s.memberships.Get(id) }

func (s *Store) Attachment(id string) (model.Attachment, bool) { return s.attachments.Get(id) }

func (s *Store) Comment(id string) (model.Comment, bool) { return s.comments.Get(id) }

func (s *Store) User(id string) (model.User, bool) { return s.users.Get(id) }

func (s *Store) Users() []model.User { return s.users.All() }

func (s *Store) BoardsOfProject(projectID string) []model.Board {
	return s.boardsByProject.ChildrenOf(projectID)
}

func (s *Store) ListsOfBoard(boardID string) []model.List {
	return s.listsByBoard.ChildrenOf(boardID)
}

func (s *Store) CardsOfList(listID string) []model.Card {
	return s.cardsByList.ChildrenOf(listID)
}

func (s *Store) TasksOfCard(cardID string) []model.Task {
	return s.tasksByCard.ChildrenOf(cardID)
}

func (s *Store) LabelsOfBoard(boardID string) []model.Label {
	return s.labelsByBoard.ChildrenOf(boardID)
}

func (s *Store) MembershipsOfBoard(boardID string) []model.Membership {
	return s.membershipsByBoard.ChildrenOf(boardID)
}

func (s *Store) AttachmentsOfCard(cardID string) []model.Attachment {
	return s.attachmentsByCard.ChildrenOf(cardID)
}

// CommentsOfCard returns the card's comments in creation order.
func (s *Store) CommentsOfCard(cardID string) []model.Comment {
	return s.commentsByCard.ChildrenOf(cardID)
}

// FilteredCardsOfList applies the owning board's filter sets to the list's
// ordered cards. A card passes the user dimension when one of its members or
// one of its tasks' assignees is in the filter set, and the label dimension
// when one of its labels is. An empty set imposes no constraint. The result
// is computed from current table state on every call.
func (s *Store) FilteredCardsOfList(listID string) []model.Card {
	list, ok := s.lists.Get(listID)
	if !ok {
		return nil
	}
	board, ok := s.boards.Get(list.BoardID)
	if !ok {
		return nil
	}

	cards := s.cardsByList.ChildrenOf(listID)
	if len(board.FilterUserIDs) == 0 && len(board.FilterLabelIDs) == 0 {
		return cards
	}
	filterUsers := toSet(board.FilterUserIDs)
	filterLabels := toSet(board.FilterLabelIDs)

	out := cards[:0:0]
	for _, c := range cards {
		if len(filterUsers) > 0 && !s.cardMatchesUsers(c, filterUsers) {
			continue
		}
		if len(filterLabels) > 0 && !anyIn(c.LabelIDs, filterLabels) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Store) cardMatchesUsers(c model.Card, filter map[string]struct{}) bool {
	if anyIn(c.UserIDs, filter) {
		return true
	}
	for _, t := range s.tasksByCard.ChildrenOf(c.ID) {
		if anyIn(t.UserIDs, filter) {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func anyIn(ids []string, set map[string]struct{}) bool {
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
