package tiffcomposite

// VisitPhase names the two independent traversal gates a Visitor can
// lower to prune or redirect traversal (C4).
type VisitPhase int

const (
	// PhaseTraverse controls whether traversal continues at all; clearing
	// it between two siblings skips the remainder of the sibling list.
	PhaseTraverse VisitPhase = iota
	// PhaseKnownMakernote controls whether an attached Makernote is
	// traversed and kept; clearing it causes the attached Makernote to be
	// destroyed in place once TiffMnEntry has been visited.
	PhaseKnownMakernote
)

// Visitor is the double-dispatch interface external encoders/printers
// implement to walk the tree in document order with controlled pruning
// (§4.4). Each node's Accept calls the matching typed Visit* method.
type Visitor interface {
	Go(phase VisitPhase) bool

	VisitEntry(e *Entry)
	VisitDataEntry(e *DataEntry)
	VisitImageEntry(e *ImageEntry)
	VisitSizeEntry(e *SizeEntry)
	VisitDirectory(d *Directory)
	VisitDirectoryNext(d *Directory)
	VisitDirectoryEnd(d *Directory)
	VisitSubIfd(s *SubIfdEntry)
	VisitMnEntry(m *MnEntry)
	VisitIfdMakernote(m *IfdMakernote)
	VisitIfdMakernoteEnd(m *IfdMakernote)
	VisitBinaryArray(b *BinaryArray)
	VisitBinaryArrayEnd(b *BinaryArray)
	VisitBinaryElement(e *BinaryElement)
}

// BaseVisitor supplies no-op Visit* methods and an always-true Go, so a
// concrete visitor can embed it and only override what it cares about.
type BaseVisitor struct{}

func (BaseVisitor) Go(VisitPhase) bool                 { return true }
func (BaseVisitor) VisitEntry(*Entry)                  {}
func (BaseVisitor) VisitDataEntry(*DataEntry)           {}
func (BaseVisitor) VisitImageEntry(*ImageEntry)         {}
func (BaseVisitor) VisitSizeEntry(*SizeEntry)           {}
func (BaseVisitor) VisitDirectory(*Directory)           {}
func (BaseVisitor) VisitDirectoryNext(*Directory)       {}
func (BaseVisitor) VisitDirectoryEnd(*Directory)        {}
func (BaseVisitor) VisitSubIfd(*SubIfdEntry)            {}
func (BaseVisitor) VisitMnEntry(*MnEntry)               {}
func (BaseVisitor) VisitIfdMakernote(*IfdMakernote)     {}
func (BaseVisitor) VisitIfdMakernoteEnd(*IfdMakernote)  {}
func (BaseVisitor) VisitBinaryArray(*BinaryArray)       {}
func (BaseVisitor) VisitBinaryArrayEnd(*BinaryArray)    {}
func (BaseVisitor) VisitBinaryElement(*BinaryElement)   {}

// accept is the NVI-style entry point every node's Accept forwards
// through: it checks PhaseTraverse once before dispatching, matching
// TiffComponent::accept in the original.
func accept(v Visitor, doAccept func(Visitor)) {
	if v.Go(PhaseTraverse) {
		doAccept(v)
	}
}
