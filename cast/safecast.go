// Package cast 集中存放整数类型之间按位重解释的转换，调用方负责保证取值范围.
package cast

import "unsafe"

// As 直接按内存重解释，仅用于物理布局相同 (同宽度) 的类型.
func As[T any, F any](from F) T {
	return *(*T)(unsafe.Pointer(&from))
}

func IntToUint64(i int) uint64     { return As[uint64](i) }
func Int64ToUint64(i int64) uint64 { return As[uint64](i) }
func Uint64ToInt64(u uint64) int64 { return As[int64](u) }

// Int64ToUint16 截断为低 16 位.
func Int64ToUint16(i int64) uint16 { return uint16(i & 0xFFFF) } //nolint:gosec
