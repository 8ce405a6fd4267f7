package v1

import "google.golang.org/protobuf/encoding/protowire"

// Messages of lockbox.v1.FileService, see filestore.proto for the wire layout.

type ListRequest struct{}

func (m *ListRequest) MarshalWire() []byte { return nil }

func (m *ListRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(protowire.Number, protowire.Type, []byte) int { return skipField })
}

type ListResponse struct {
	Names []string
}

func (m *ListResponse) MarshalWire() []byte {
	var b []byte
	for _, name := range m.Names {
		// repeated strings keep empty elements
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	return b
}

func (m *ListResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			var name string
			n := readString(b, &name)
			m.Names = append(m.Names, name)
			return n
		}
		return skipField
	})
}

type SizeRequest struct {
	Name string
}

func (m *SizeRequest) MarshalWire() []byte {
	return appendString(nil, 1, m.Name)
}

func (m *SizeRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			return readString(b, &m.Name)
		}
		return skipField
	})
}

type SizeResponse struct {
	Size int64 // -1 when the file does not exist
}

func (m *SizeResponse) MarshalWire() []byte {
	return appendSint64(nil, 1, m.Size)
}

func (m *SizeResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.VarintType {
			return readSint64(b, &m.Size)
		}
		return skipField
	})
}

// shared layout of every request that only names a file and a holder
type nameHolder struct {
	Name   string
	Holder string
}

func (m *nameHolder) marshal() []byte {
	b := appendString(nil, 1, m.Name)
	return appendString(b, 2, m.Holder)
}

func (m *nameHolder) unmarshal(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return readString(b, &m.Name)
		case num == 2 && typ == protowire.BytesType:
			return readString(b, &m.Holder)
		}
		return skipField
	})
}

type AcquireRequest struct {
	Name   string
	Holder string
}

func (m *AcquireRequest) MarshalWire() []byte {
	return (*nameHolder)(m).marshal()
}

func (m *AcquireRequest) UnmarshalWire(b []byte) error {
	return (*nameHolder)(m).unmarshal(b)
}

type AcquireResponse struct {
	Acquired bool
}

func (m *AcquireResponse) MarshalWire() []byte {
	return appendBool(nil, 1, m.Acquired)
}

func (m *AcquireResponse) UnmarshalWire(b []byte) error {
	return unmarshalBool(b, &m.Acquired)
}

type ReleaseRequest struct {
	Name   string
	Holder string
}

func (m *ReleaseRequest) MarshalWire() []byte {
	return (*nameHolder)(m).marshal()
}

func (m *ReleaseRequest) UnmarshalWire(b []byte) error {
	return (*nameHolder)(m).unmarshal(b)
}

type ReleaseResponse struct {
	Released bool
}

func (m *ReleaseResponse) MarshalWire() []byte {
	return appendBool(nil, 1, m.Released)
}

func (m *ReleaseResponse) UnmarshalWire(b []byte) error {
	return unmarshalBool(b, &m.Released)
}

type CreateEmptyRequest struct {
	Name   string
	Holder string
}

func (m *CreateEmptyRequest) MarshalWire() []byte {
	return (*nameHolder)(m).marshal()
}

func (m *CreateEmptyRequest) UnmarshalWire(b []byte) error {
	return (*nameHolder)(m).unmarshal(b)
}

type CreateEmptyResponse struct{}

func (m *CreateEmptyResponse) MarshalWire() []byte { return nil }

func (m *CreateEmptyResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(protowire.Number, protowire.Type, []byte) int { return skipField })
}

type WriteChunkRequest struct {
	Name   string
	Data   []byte
	Holder string
}

func (m *WriteChunkRequest) MarshalWire() []byte {
	b := make([]byte, 0, len(m.Data)+len(m.Name)+len(m.Holder)+16)
	b = appendString(b, 1, m.Name)
	b = appendBytes(b, 2, m.Data)
	return appendString(b, 3, m.Holder)
}

func (m *WriteChunkRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return readString(b, &m.Name)
		case num == 2 && typ == protowire.BytesType:
			return readBytes(b, &m.Data)
		case num == 3 && typ == protowire.BytesType:
			return readString(b, &m.Holder)
		}
		return skipField
	})
}

type WriteChunkResponse struct{}

func (m *WriteChunkResponse) MarshalWire() []byte { return nil }

func (m *WriteChunkResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(protowire.Number, protowire.Type, []byte) int { return skipField })
}

type ReadChunkRequest struct {
	Name    string
	Offset  int64
	MaxSize int64
}

func (m *ReadChunkRequest) MarshalWire() []byte {
	b := appendString(nil, 1, m.Name)
	b = appendVarint(b, 2, uint64(m.Offset))
	return appendVarint(b, 3, uint64(m.MaxSize))
}

func (m *ReadChunkRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return readString(b, &m.Name)
		case num == 2 && typ == protowire.VarintType:
			return readInt64(b, &m.Offset)
		case num == 3 && typ == protowire.VarintType:
			return readInt64(b, &m.MaxSize)
		}
		return skipField
	})
}

type ReadChunkResponse struct {
	Data []byte
	Eof  bool // end marker
}

func (m *ReadChunkResponse) MarshalWire() []byte {
	b := make([]byte, 0, len(m.Data)+8)
	b = appendBytes(b, 1, m.Data)
	return appendBool(b, 2, m.Eof)
}

func (m *ReadChunkResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return readBytes(b, &m.Data)
		case num == 2 && typ == protowire.VarintType:
			return readBool(b, &m.Eof)
		}
		return skipField
	})
}

type DeleteRequest struct {
	Name   string
	Holder string
}

func (m *DeleteRequest) MarshalWire() []byte {
	return (*nameHolder)(m).marshal()
}

func (m *DeleteRequest) UnmarshalWire(b []byte) error {
	return (*nameHolder)(m).unmarshal(b)
}

type DeleteResponse struct {
	Deleted bool
}

func (m *DeleteResponse) MarshalWire() []byte {
	return appendBool(nil, 1, m.Deleted)
}

func (m *DeleteResponse) UnmarshalWire(b []byte) error {
	return unmarshalBool(b, &m.Deleted)
}

type StatusRequest struct{}

func (m *StatusRequest) MarshalWire() []byte { return nil }

func (m *StatusRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(protowire.Number, protowire.Type, []byte) int { return skipField })
}

type StatusResponse struct {
	Files          int32
	Locks          int32
	MaxChunkSize   int64
	UptimeSeconds  int64
	LockTtlSeconds int64
	HeldLocks      []*LockInfo
}

func (m *StatusResponse) MarshalWire() []byte {
	b := appendVarint(nil, 1, uint64(m.Files))
	b = appendVarint(b, 2, uint64(m.Locks))
	b = appendVarint(b, 3, uint64(m.MaxChunkSize))
	b = appendVarint(b, 4, uint64(m.UptimeSeconds))
	b = appendVarint(b, 5, uint64(m.LockTtlSeconds))
	for _, l := range m.HeldLocks {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, l.MarshalWire())
	}
	return b
}

func (m *StatusResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if typ == protowire.VarintType {
			switch num {
			case 1:
				return readInt32(b, &m.Files)
			case 2:
				return readInt32(b, &m.Locks)
			case 3:
				return readInt64(b, &m.MaxChunkSize)
			case 4:
				return readInt64(b, &m.UptimeSeconds)
			case 5:
				return readInt64(b, &m.LockTtlSeconds)
			}
		}
		if num == 6 && typ == protowire.BytesType {
			l := new(LockInfo)
			n := readMessage(b, l)
			m.HeldLocks = append(m.HeldLocks, l)
			return n
		}
		return skipField
	})
}

type LockInfo struct {
	Name        string
	Holder      string
	RemainingMs int64 // zero when the lock never expires
}

func (m *LockInfo) MarshalWire() []byte {
	b := appendString(nil, 1, m.Name)
	b = appendString(b, 2, m.Holder)
	return appendVarint(b, 3, uint64(m.RemainingMs))
}

func (m *LockInfo) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return readString(b, &m.Name)
		case num == 2 && typ == protowire.BytesType:
			return readString(b, &m.Holder)
		case num == 3 && typ == protowire.VarintType:
			return readInt64(b, &m.RemainingMs)
		}
		return skipField
	})
}

type HistoryRequest struct {
	Limit int32
}

func (m *HistoryRequest) MarshalWire() []byte {
	return appendVarint(nil, 1, uint64(m.Limit))
}

func (m *HistoryRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.VarintType {
			return readInt32(b, &m.Limit)
		}
		return skipField
	})
}

type HistoryResponse struct {
	Entries []*JournalEntry
}

func (m *HistoryResponse) MarshalWire() []byte {
	var b []byte
	for _, e := range m.Entries {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, e.MarshalWire())
	}
	return b
}

func (m *HistoryResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			e := new(JournalEntry)
			n := readMessage(b, e)
			m.Entries = append(m.Entries, e)
			return n
		}
		return skipField
	})
}

type JournalEntry struct {
	Seq      uint64
	Op       string
	Name     string
	Holder   string
	UnixNano int64
}

func (m *JournalEntry) MarshalWire() []byte {
	b := appendVarint(nil, 1, m.Seq)
	b = appendString(b, 2, m.Op)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.Holder)
	return appendVarint(b, 5, uint64(m.UnixNano))
}

func (m *JournalEntry) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return readUint64(b, &m.Seq)
		case num == 2 && typ == protowire.BytesType:
			return readString(b, &m.Op)
		case num == 3 && typ == protowire.BytesType:
			return readString(b, &m.Name)
		case num == 4 && typ == protowire.BytesType:
			return readString(b, &m.Holder)
		case num == 5 && typ == protowire.VarintType:
			return readInt64(b, &m.UnixNano)
		}
		return skipField
	})
}

func unmarshalBool(b []byte, dst *bool) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.VarintType {
			return readBool(b, dst)
		}
		return skipField
	})
}
