package game

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/pierrec/lz4/v4"
)

// 预设归档格式（小端）：
//
//	magic   [4]byte  "PFXA"
//	version uint16   1
//	count   uint16   条目数
//	每个条目：
//	  nameLen uint16, name []byte
//	  rawLen  uint32  解压后长度
//	  packLen uint32  存储长度；等于 0 表示原样存储（数据不可压缩）
//	  data    []byte
const (
	archiveMagic   = "PFXA"
	archiveVersion = 1

	// maxArchiveEntry 单条目解压上限，防止损坏数据触发巨量分配
	maxArchiveEntry = 16 << 20
)

// ErrBadArchive 归档格式错误或数据损坏
var ErrBadArchive = errors.New("bad preset archive")

// PackArchive 把多个命名数据块打包并用 lz4 块压缩
//
// 条目按名称排序写入，相同输入得到相同输出。
func PackArchive(entries map[string][]byte) ([]byte, error) {
	if len(entries) > 0xffff {
		return nil, fmt.Errorf("too many archive entries: %d", len(entries))
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		if name == "" || len(name) > 0xffff {
			return nil, fmt.Errorf("invalid archive entry name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := append([]byte(nil), archiveMagic...)
	out = binary.LittleEndian.AppendUint16(out, archiveVersion)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(names)))

	for _, name := range names {
		raw := entries[name]
		if len(raw) > maxArchiveEntry {
			return nil, fmt.Errorf("archive entry %q too large: %d bytes", name, len(raw))
		}

		packed := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, packed, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to compress %q: %w", name, err)
		}

		out = binary.LittleEndian.AppendUint16(out, uint16(len(name)))
		out = append(out, name...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(raw)))

		// CompressBlock 对不可压缩数据返回 0
		if n == 0 || n >= len(raw) {
			out = binary.LittleEndian.AppendUint32(out, 0)
			out = append(out, raw...)
			continue
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(n))
		out = append(out, packed[:n]...)
	}

	return out, nil
}

// UnpackArchive 解析 PackArchive 生成的数据
func UnpackArchive(data []byte) (map[string][]byte, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(archiveMagic))
	if _, err := readFull(r, magic); err != nil || string(magic) != archiveMagic {
		return nil, fmt.Errorf("%w: missing magic", ErrBadArchive)
	}

	var version, count uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	if version != archiveVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArchive, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	entries := make(map[string][]byte, count)
	for i := 0; i < int(count); i++ {
		name, raw, err := readArchiveEntry(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry #%d: %v", ErrBadArchive, i, err)
		}
		entries[name] = raw
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadArchive, r.Len())
	}
	return entries, nil
}

func readArchiveEntry(r *bytes.Reader) (string, []byte, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return "", nil, err
	}
	name := make([]byte, nameLen)
	if _, err := readFull(r, name); err != nil {
		return "", nil, err
	}

	var rawLen, packLen uint32
	if err := binary.Read(r, binary.LittleEndian, &rawLen); err != nil {
		return "", nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &packLen); err != nil {
		return "", nil, err
	}
	if rawLen > maxArchiveEntry {
		return "", nil, fmt.Errorf("entry %q claims %d bytes", name, rawLen)
	}

	if packLen == 0 {
		raw := make([]byte, rawLen)
		if _, err := readFull(r, raw); err != nil {
			return "", nil, err
		}
		return string(name), raw, nil
	}

	if int64(packLen) > int64(r.Len()) {
		return "", nil, fmt.Errorf("entry %q: truncated", name)
	}
	packed := make([]byte, packLen)
	if _, err := readFull(r, packed); err != nil {
		return "", nil, err
	}
	raw := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(packed, raw)
	if err != nil {
		return "", nil, fmt.Errorf("entry %q: %w", name, err)
	}
	if n != int(rawLen) {
		return "", nil, fmt.Errorf("entry %q: decompressed %d bytes, want %d", name, n, rawLen)
	}
	return string(name), raw, nil
}

func readFull(r *bytes.Reader, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.Len() < len(p) {
		return 0, fmt.Errorf("truncated: need %d bytes, have %d", len(p), r.Len())
	}
	return r.Read(p)
}
