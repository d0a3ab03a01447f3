package tiffcomposite

import "errors"

// Fatal errors (see SPEC_FULL.md §2, spec.md §7): these abandon the
// write in progress. They are returned, never panicked, mirroring the
// teacher's own fmt.Errorf-wrapped sentinel style (cog.go, geotiff.go).
var (
	// ErrTooManyTiffDirectoryEntries is returned when a directory has more
	// than 0xffff components; the 16-bit entry count cannot represent it.
	ErrTooManyTiffDirectoryEntries = errors.New("tiffcomposite: too many directory entries")

	// ErrImageWriteFailed is returned when an ImageEntry's offset and size
	// arrays differ in length (or the size array is missing), and by
	// Directory.AddPath when a path continues past a child that is not
	// present.
	ErrImageWriteFailed = errors.New("tiffcomposite: image write failed")

	// ErrUnsupportedDataAreaOffsetType is returned by writeOffset when
	// asked to encode an offset into a TIFF type other than SHORT or LONG.
	ErrUnsupportedDataAreaOffsetType = errors.New("tiffcomposite: unsupported data area offset type")

	// ErrCloneNotSupported is returned by Clone on node kinds the original
	// deliberately left uncloneable (MnEntry, IfdMakernote) rather than
	// silently dropping the subtree.
	ErrCloneNotSupported = errors.New("tiffcomposite: clone not supported for this node kind")
)
