package a3interface

/*
#include <stdlib.h>

typedef int (*extensionCallback)(char const *name, char const *function, char const *data);

static inline int runExtensionCallback(extensionCallback fnc, char const *name, char const *function, char const *data)
{
	return fnc(name, function, data);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// ErrNoCallback is returned when the game has not registered a callback yet.
var ErrNoCallback = errors.New("extension callback not registered")

var (
	callbackMu  sync.Mutex
	callbackFnc C.extensionCallback
)

// called by Arma once at load time with the function used to push data back into the mission
//
//export RVExtensionRegisterCallback
func RVExtensionRegisterCallback(fnc C.extensionCallback) {
	callbackMu.Lock()
	defer callbackMu.Unlock()
	callbackFnc = fnc
}

// WriteArmaCallback sends function/data to the mission, where it arrives in the
// ExtensionCallback event handler.
func WriteArmaCallback(function, data string) error {
	callbackMu.Lock()
	defer callbackMu.Unlock()

	if callbackFnc == nil {
		return ErrNoCallback
	}

	name := C.CString(Config.extensionName)
	defer C.free(unsafe.Pointer(name))
	fn := C.CString(function)
	defer C.free(unsafe.Pointer(fn))
	payload := C.CString(data)
	defer C.free(unsafe.Pointer(payload))

	// Arma returns -1 when its callback buffer is full.
	if rc := C.runExtensionCallback(callbackFnc, name, fn, payload); rc < 0 {
		return fmt.Errorf("callback %s rejected by game (buffer full)", function)
	}
	return nil
}
