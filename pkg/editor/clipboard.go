package editor

import (
	"github.com/hollisb/cirrus/pkg/catalog"
	"github.com/hollisb/cirrus/pkg/topology"
)

// PasteOffset is the default canvas offset for a plain paste, on both axes.
const PasteOffset = 24

// DuplicateOffset is the canvas offset Duplicate applies on both axes. It is
// deliberately larger than PasteOffset so repeated duplications fan out
// instead of stacking exactly on top of each other.
const DuplicateOffset = 48

// copySuffix marks pasted labels as copies.
const copySuffix = " (copy)"

// clipboardEntry is a snapshot of a single node taken at copy/cut time. It
// is independent of graph identity, so one entry can be pasted repeatedly —
// and keeps working even after the source node is gone.
type clipboardEntry struct {
	typeID       string
	label        string
	icon         string
	position     topology.Position
	properties   map[string]any
	resolvedType *catalog.ResourceType
}

// Copy snapshots the selected node into the clipboard. It is a no-op unless
// a node is selected. Copying twice without intervening mutation yields the
// same entry; the clipboard is only ever overwritten by the next Copy or
// Cut, never cleared by unrelated edits.
func (s *Session) Copy() bool {
	s.mu.Lock()
	if !s.initialized || s.selection.Kind != SelectionNode {
		s.mu.Unlock()
		return false
	}
	id := s.selection.ID
	if _, known := s.nodeTypes[id]; !known {
		s.mu.Unlock()
		return false
	}

	entry := &clipboardEntry{
		typeID:     s.nodeTypes[id],
		label:      s.nodeLabels[id],
		properties: topology.CloneProperties(s.nodeProps[id]),
	}
	if v, ok := s.surface.NodeView(id); ok {
		entry.position = v.Position
	}
	if t, ok := s.types.TypeByID(entry.typeID); ok {
		entry.icon = t.Icon
		entry.resolvedType = &t
	}
	s.clipboard = entry
	s.mu.Unlock()
	return true
}

// Cut is Copy followed by RemoveSelected.
func (s *Session) Cut() bool {
	if !s.Copy() {
		return false
	}
	return s.RemoveSelected()
}

// Paste materializes the clipboard entry as a new node offset by dx and dy
// from the original, with a fresh identity and a label suffixed to mark it
// as a copy. The new node becomes the selection. Returns ("", false) when
// the clipboard is empty.
func (s *Session) Paste(dx, dy float64) (string, bool) {
	s.mu.Lock()
	if !s.initialized || s.clipboard == nil {
		s.mu.Unlock()
		return "", false
	}
	entry := s.clipboard

	id := newID()
	label := entry.label + copySuffix
	pos := entry.position.Offset(dx, dy)
	if err := s.surface.AddNode(id, label, entry.icon, pos); err != nil {
		s.mu.Unlock()
		return "", false
	}
	s.nodeTypes[id] = entry.typeID
	s.nodeLabels[id] = label
	s.nodeProps[id] = topology.CloneProperties(entry.properties)
	s.selection = Selection{Kind: SelectionNode, ID: id}
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return id, true
}

// Duplicate is Copy followed by Paste at the duplicate offset.
func (s *Session) Duplicate() (string, bool) {
	if !s.Copy() {
		return "", false
	}
	return s.Paste(DuplicateOffset, DuplicateOffset)
}

// HasClipboard reports whether the clipboard holds an entry.
func (s *Session) HasClipboard() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clipboard != nil
}
