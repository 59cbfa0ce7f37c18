package promptmeta

// SaveOption configures how SaveAs writes the output file.
type SaveOption func(*saveOptions)

type saveOptions struct {
	backupSuffix string
	validate     bool
}

func defaultSaveOptions() *saveOptions {
	return &saveOptions{}
}

// WithBackup renames an existing file at the output path to
// path+suffix before the new file is moved into place.
//
//	err := file.SaveAs("image.png", payload, promptmeta.WithBackup(".bak"))
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-opens the written file and verifies that it
// classifies successfully and reproduces the payload's prompts. Slower,
// but catches container-rebuild bugs before the caller trusts the
// output.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}
