package persist

import (
	"bytes"
	"io"

	"github.com/halvik/cryo/internal/format"
	"github.com/halvik/cryo/vm"
)

// Dump writes the stream header and one value to w. perms maps live
// objects to replacement keys and may be nil.
func Dump(s *vm.State, cfg Config, perms *vm.Table, v vm.Value, w io.Writer) error {
	p := &persister{
		s:     s,
		cfg:   cfg,
		w:     format.NewWriter(w),
		perms: perms,
		refs:  newWriterRefs(),
	}
	p.path.on = cfg.Path
	if err := p.w.WriteHeader(); err != nil {
		return convertWriteErr(err, &p.path)
	}
	return convertWriteErr(p.value(v), &p.path)
}

// Undump reads the stream header and one value from r. perms maps
// replacement keys back to live objects and may be nil when the stream
// carries no permanents.
func Undump(s *vm.State, cfg Config, perms *vm.Table, r io.Reader) (vm.Value, error) {
	u := &unpersister{
		s:     s,
		cfg:   cfg,
		r:     format.NewReader(r),
		perms: perms,
	}
	u.path.on = cfg.Path
	if _, err := u.r.ReadHeader(); err != nil {
		return nil, convertReadErr(err, &u.path)
	}
	v, err := u.valueOf()
	if err != nil {
		return nil, convertReadErr(err, &u.path)
	}
	return v, nil
}

// Persist is the in-memory convenience wrapper around Dump.
func Persist(s *vm.State, cfg Config, perms *vm.Table, v vm.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Dump(s, cfg, perms, v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unpersist is the in-memory convenience wrapper around Undump.
func Unpersist(s *vm.State, cfg Config, perms *vm.Table, data []byte) (vm.Value, error) {
	return Undump(s, cfg, perms, bytes.NewReader(data))
}
