package docipc

// TakeHeapSnapshot implements [Receiver]. It takes ownership of file for the
// duration of the call, and closes it before responding. The capture blocks
// the calling execution unit, and may perform blocking I/O.
//
// If file cannot be unwrapped, callback receives false, and no capture is
// attempted.
func (x *Service) TakeHeapSnapshot(file OutputHandle, callback func(success bool)) {
	respond := func(success bool) {
		if callback != nil {
			callback(success)
		}
	}

	if file == nil {
		x.logSnapshotFailure(ErrInvalidHandle, `unable to get the file handle`)
		respond(false)
		return
	}
	w, err := file.Unwrap()
	if err != nil {
		x.logSnapshotFailure(err, `unable to get the file handle`)
		respond(false)
		return
	}

	err = x.snapshotter.WriteHeapSnapshot(w)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		x.logSnapshotFailure(err, `heap snapshot failed`)
		respond(false)
		return
	}
	respond(true)
}

func (x *Service) logSnapshotFailure(err error, msg string) {
	x.logger.Err().
		Str(`category`, categorySnapshot).
		Err(err).
		Log(msg)
}
