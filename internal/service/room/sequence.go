package room

import "github.com/lwouters/profile-assistant/backend/internal/model/chat"

// sequence is the ordered log backing one room. The three mutation
// primitives below are the only ways entries move, so the placeholder and
// streaming ordering rules stay in one place instead of being spread over
// index arithmetic at call sites.
type sequence struct {
	entries []chat.Message
}

func (s *sequence) appendTail(m chat.Message) {
	s.entries = append(s.entries, m)
}

// insertBeforeFirstMatching inserts m immediately before the first entry
// satisfying match, or at the tail when nothing matches.
func (s *sequence) insertBeforeFirstMatching(m chat.Message, match func(chat.Message) bool) {
	for i, e := range s.entries {
		if match(e) {
			s.entries = append(s.entries, chat.Message{})
			copy(s.entries[i+1:], s.entries[i:])
			s.entries[i] = m
			return
		}
	}
	s.entries = append(s.entries, m)
}

// replaceTail overwrites the last entry. Callers must ensure the sequence
// is non-empty.
func (s *sequence) replaceTail(m chat.Message) {
	s.entries[len(s.entries)-1] = m
}

func (s *sequence) tail() (chat.Message, bool) {
	if len(s.entries) == 0 {
		return chat.Message{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *sequence) contains(kind chat.Kind) bool {
	for _, e := range s.entries {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func (s *sequence) filter(keep func(chat.Message) bool) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

func (s *sequence) snapshot() []chat.Message {
	copied := make([]chat.Message, len(s.entries))
	copy(copied, s.entries)
	return copied
}
