package gvcf

// indelBuffer holds the currently open indel group. Slots are reused
// across groups: reset only clears the size, so paths and filter sets
// keep their storage.
type indelBuffer struct {
	calls []IndelCall
	size  int
}

func (buf *indelBuffer) add() *IndelCall {
	for len(buf.calls) <= buf.size {
		buf.calls = append(buf.calls, IndelCall{})
	}
	ii := &buf.calls[buf.size]
	buf.size++
	return ii
}

func (buf *indelBuffer) active() []IndelCall {
	return buf.calls[:buf.size]
}

func (buf *indelBuffer) reset() {
	buf.size = 0
}

// siteBuffer holds the sites that fall inside the open indel group.
type siteBuffer struct {
	calls []SiteCall
	size  int
}

func (buf *siteBuffer) add(si *SiteCall) {
	for len(buf.calls) <= buf.size {
		buf.calls = append(buf.calls, SiteCall{})
	}
	buf.calls[buf.size].assign(si)
	buf.size++
}

func (buf *siteBuffer) active() []SiteCall {
	return buf.calls[:buf.size]
}

func (buf *siteBuffer) reset() {
	buf.size = 0
}
