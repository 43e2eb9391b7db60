//go:build darwin && cgo

package iokit

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation -F/System/Library/PrivateFrameworks -framework BezelServices
#include <stdint.h>
#include <CoreFoundation/CoreFoundation.h>

typedef struct __IOHIDEvent *IOHIDEventRef;
typedef struct __IOHIDServiceClient *IOHIDServiceClientRef;

extern IOHIDServiceClientRef ALCALSCopyALSServiceClient(void);
extern IOHIDEventRef IOHIDServiceClientCopyEvent(IOHIDServiceClientRef client, int64_t type, int32_t options, int64_t timestamp);
extern double IOHIDEventGetFloatValue(IOHIDEventRef event, int32_t field);

static const int64_t kAmbientLightSensorEvent = 12;
static const int32_t kAmbientLightSensorEventField = 12 << 16;

static int alsLux(IOHIDServiceClientRef client, double *out) {
	IOHIDEventRef event = IOHIDServiceClientCopyEvent(client, kAmbientLightSensorEvent, 0, 0);
	if (event == NULL) return 0;
	*out = IOHIDEventGetFloatValue(event, kAmbientLightSensorEventField);
	CFRelease((CFTypeRef)event);
	return 1;
}

static void releaseClient(IOHIDServiceClientRef client) {
	if (client != NULL) CFRelease((CFTypeRef)client);
}
*/
import "C"

// EventClient is the ambient light HID service client
type EventClient struct {
	client C.IOHIDServiceClientRef
}

// OpenEventClient copies the ALS service client, false when the machine has none
func OpenEventClient() (*EventClient, bool) {
	client := C.ALCALSCopyALSServiceClient()
	if client == nil {
		return nil, false
	}
	return &EventClient{client: client}, true
}

// AmbientLux copies the current ambient light event
func (e *EventClient) AmbientLux() (float64, bool) {
	if e.client == nil {
		return 0, false
	}
	var lux C.double
	if C.alsLux(e.client, &lux) == 0 {
		return 0, false
	}
	return float64(lux), true
}

func (e *EventClient) Release() {
	if e.client != nil {
		C.releaseClient(e.client)
		e.client = nil
	}
}
