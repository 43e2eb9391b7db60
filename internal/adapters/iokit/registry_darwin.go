//go:build darwin && cgo

package iokit

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/IOKitLib.h>

enum { kindUnknown, kindNumber, kindBool, kindString, kindDict };

static kern_return_t matchingServices(const char *key, io_iterator_t *iter) {
	CFMutableDictionaryRef match = CFDictionaryCreateMutable(kCFAllocatorDefault, 1,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	CFStringRef k = CFStringCreateWithCString(kCFAllocatorDefault, key, kCFStringEncodingUTF8);
	CFDictionarySetValue(match, CFSTR(kIOPropertyExistsMatchKey), k);
	CFRelease(k);
	// consumes match
	return IOServiceGetMatchingServices(MACH_PORT_NULL, match, iter);
}

static CFTypeRef copyProperty(io_registry_entry_t entry, const char *key) {
	CFStringRef k = CFStringCreateWithCString(kCFAllocatorDefault, key, kCFStringEncodingUTF8);
	CFTypeRef v = IORegistryEntryCreateCFProperty(entry, k, kCFAllocatorDefault, 0);
	CFRelease(k);
	return v;
}

static int parentName(io_registry_entry_t entry, char *out) {
	io_registry_entry_t parent = 0;
	if (IORegistryEntryGetParentEntry(entry, kIOServicePlane, &parent) != KERN_SUCCESS || parent == 0) {
		return 0;
	}
	kern_return_t kr = IORegistryEntryGetName(parent, out);
	IOObjectRelease(parent);
	return kr == KERN_SUCCESS;
}

static int cfKind(CFTypeRef v) {
	if (v == NULL) return kindUnknown;
	CFTypeID id = CFGetTypeID(v);
	if (id == CFNumberGetTypeID()) return kindNumber;
	if (id == CFBooleanGetTypeID()) return kindBool;
	if (id == CFStringGetTypeID()) return kindString;
	if (id == CFDictionaryGetTypeID()) return kindDict;
	return kindUnknown;
}

static double cfNumber(CFTypeRef v) {
	double d = 0;
	CFNumberGetValue((CFNumberRef)v, kCFNumberDoubleType, &d);
	return d;
}

static int cfBool(CFTypeRef v) {
	return CFBooleanGetValue((CFBooleanRef)v);
}

// cfString returns a malloc'd UTF-8 copy or NULL
static char *cfString(CFTypeRef v) {
	CFIndex n = CFStringGetLength((CFStringRef)v);
	CFIndex max = CFStringGetMaximumSizeForEncoding(n, kCFStringEncodingUTF8) + 1;
	char *buf = malloc(max);
	if (buf == NULL) return NULL;
	if (!CFStringGetCString((CFStringRef)v, buf, max, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

static CFIndex cfDictCount(CFTypeRef d) {
	return CFDictionaryGetCount((CFDictionaryRef)d);
}

static int cfDictEntry(CFTypeRef d, CFIndex i, CFTypeRef *key, CFTypeRef *value) {
	CFIndex n = CFDictionaryGetCount((CFDictionaryRef)d);
	if (i < 0 || i >= n) return 0;
	const void **keys = malloc(sizeof(void *) * n);
	const void **values = malloc(sizeof(void *) * n);
	if (keys == NULL || values == NULL) {
		free(keys);
		free(values);
		return 0;
	}
	CFDictionaryGetKeysAndValues((CFDictionaryRef)d, keys, values);
	*key = keys[i];
	*value = values[i];
	free(keys);
	free(values);
	return 1;
}

static void cfRelease(CFTypeRef v) {
	if (v != NULL) CFRelease(v);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/quentinrf/ambient-light/internal/ports"
)

// nested dictionaries deeper than this are dropped
const maxDictDepth = 4

// Registry is the I/O Registry service plane
type Registry struct{}

// NewRegistry returns the I/O Registry
func NewRegistry() *Registry { return &Registry{} }

// Match returns services for which the key property exists
func (Registry) Match(key string) (ports.NodeIterator, error) {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	var iter C.io_iterator_t
	if kr := C.matchingServices(ckey, &iter); kr != C.KERN_SUCCESS {
		return nil, fmt.Errorf("IOServiceGetMatchingServices(%s): kern_return %d", key, int(kr))
	}
	return &iterator{iter: iter}, nil
}

type iterator struct {
	iter C.io_iterator_t
}

func (it *iterator) Next() (ports.Node, bool) {
	if it.iter == 0 {
		return nil, false
	}
	entry := C.IOIteratorNext(it.iter)
	if entry == 0 {
		return nil, false
	}
	return &node{entry: C.io_registry_entry_t(entry)}, true
}

func (it *iterator) Release() {
	if it.iter != 0 {
		C.IOObjectRelease(C.io_object_t(it.iter))
		it.iter = 0
	}
}

type node struct {
	entry C.io_registry_entry_t
}

func (n *node) Property(key string) (any, bool) {
	if n.entry == 0 {
		return nil, false
	}
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	v := C.copyProperty(n.entry, ckey)
	if v == 0 {
		return nil, false
	}
	defer C.cfRelease(v)
	return toGo(v, 0)
}

func (n *node) ParentName() (string, bool) {
	if n.entry == 0 {
		return "", false
	}
	var name [128]C.char // io_name_t
	if C.parentName(n.entry, &name[0]) == 0 {
		return "", false
	}
	return C.GoString(&name[0]), true
}

func (n *node) Release() {
	if n.entry != 0 {
		C.IOObjectRelease(C.io_object_t(n.entry))
		n.entry = 0
	}
}

// toGo copies a CoreFoundation value into Go types. v stays owned by the caller.
func toGo(v C.CFTypeRef, depth int) (any, bool) {
	switch C.cfKind(v) {
	case C.kindNumber:
		return float64(C.cfNumber(v)), true
	case C.kindBool:
		return C.cfBool(v) != 0, true
	case C.kindString:
		s := C.cfString(v)
		if s == nil {
			return nil, false
		}
		defer C.free(unsafe.Pointer(s))
		return C.GoString(s), true
	case C.kindDict:
		if depth >= maxDictDepth {
			return nil, false
		}
		n := int(C.cfDictCount(v))
		out := make(map[string]any, n)
		for i := 0; i < n; i++ {
			var k, val C.CFTypeRef
			if C.cfDictEntry(v, C.CFIndex(i), &k, &val) == 0 {
				continue
			}
			name, ok := toGo(k, depth+1)
			if !ok {
				continue
			}
			key, ok := name.(string)
			if !ok {
				continue
			}
			if gv, ok := toGo(val, depth+1); ok {
				out[key] = gv
			}
		}
		return out, true
	}
	return nil, false
}
