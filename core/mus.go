package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the domain types. Field order is part of
// the storage format; append new fields at the end only.

// IDMUS serializes an ID.
var IDMUS = idMUS{}

// SourceMUS serializes a Source.
var SourceMUS = sourceMUS{}

// ChunkMUS serializes a Chunk.
var ChunkMUS = chunkMUS{}

// TurnMUS serializes a conversation Turn.
var TurnMUS = turnMUS{}

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	uv, n, err := varint.Uint64.Unmarshal(bs)
	return ID(uv), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// Timestamps are stored as Unix microseconds, UTC.
type timeMUS struct{}

func (s timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (s timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func (s timeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

var timestampMUS = timeMUS{}

type sourceMUS struct{}

func (s sourceMUS) Marshal(v Source, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += varint.Int.Marshal(int(v.Kind), bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += IDMUS.Marshal(v.ParentId, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.Translation, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += timestampMUS.Marshal(v.InsertedAt, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s sourceMUS) Unmarshal(bs []byte) (v Source, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	var kind int
	if kind, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Kind = SourceKind(kind)
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ParentId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Translation, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Language, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.InsertedAt, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (s sourceMUS) Size(v Source) (size int) {
	size = IDMUS.Size(v.Id)
	size += varint.Int.Size(int(v.Kind))
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.URL)
	size += IDMUS.Size(v.ParentId)
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.Translation)
	size += ord.String.Size(v.Language)
	size += timestampMUS.Size(v.InsertedAt)
	size += timestampMUS.Size(v.UpdatedAt)
	return size
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Kind), bs)
	n += IDMUS.Marshal(v.SourceId, bs[n:])
	n += varint.Int.Marshal(v.Index, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += timestampMUS.Marshal(v.InsertedAt, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	var kind int
	if kind, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	v.Kind = SourceKind(kind)
	if v.SourceId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.InsertedAt, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = varint.Int.Size(int(v.Kind))
	size += IDMUS.Size(v.SourceId)
	size += varint.Int.Size(v.Index)
	size += ord.String.Size(v.Text)
	size += vectorMUS.Size(v.Vector)
	size += timestampMUS.Size(v.InsertedAt)
	size += timestampMUS.Size(v.UpdatedAt)
	return size
}

type turnMUS struct{}

func (s turnMUS) Marshal(v Turn, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += varint.Int.Marshal(int(v.Speaker), bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	n += timestampMUS.Marshal(v.Timestamp, bs[n:])
	n += timestampMUS.Marshal(v.InsertedAt, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s turnMUS) Unmarshal(bs []byte) (v Turn, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	var speaker int
	if speaker, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Speaker = Speaker(speaker)
	n += n1
	if v.Contents, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Timestamp, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.InsertedAt, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (s turnMUS) Size(v Turn) (size int) {
	size = IDMUS.Size(v.Id)
	size += varint.Int.Size(int(v.Speaker))
	size += ord.String.Size(v.Contents)
	size += timestampMUS.Size(v.Timestamp)
	size += timestampMUS.Size(v.InsertedAt)
	size += timestampMUS.Size(v.UpdatedAt)
	return size
}
