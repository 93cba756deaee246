package pyenv

import "strings"

// Library is one entry of the version watch-list
type Library struct {
	DisplayName string
	ImportName  string
	PackageName string

	// WindowsPackage is checked before PackageName on Windows
	WindowsPackage string
	// Prefix enables a last-resort scan for any package starting with it
	Prefix string
}

// Key returns the report field name for the library
func (l Library) Key() string {
	return VersionKey(l.DisplayName)
}

// VersionKey derives a report key: "OpenCV" becomes "opencv_version".
func VersionKey(displayName string) string {
	key := strings.ToLower(displayName)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	return key + "_version"
}

// DefaultWatchList is the fixed set of libraries reported
var DefaultWatchList = []Library{
	{DisplayName: "torchvision", ImportName: "torchvision", PackageName: "torchvision"},
	{DisplayName: "torchaudio", ImportName: "torchaudio", PackageName: "torchaudio"},
	{DisplayName: "xformers", ImportName: "xformers", PackageName: "xformers"},
	{DisplayName: "sageattention", ImportName: "sageattention", PackageName: "sageattention"},
	{DisplayName: "nunchaku", ImportName: "nunchaku", PackageName: "nunchaku"},
	{DisplayName: "peft", ImportName: "peft", PackageName: "peft"},
	{
		DisplayName:    "Triton",
		ImportName:     "triton",
		PackageName:    "triton",
		WindowsPackage: "triton-windows",
		Prefix:         "triton",
	},
	{DisplayName: "OpenCV", ImportName: "cv2", PackageName: "opencv-python"},
	{DisplayName: "Pillow", ImportName: "PIL", PackageName: "Pillow"},
	{DisplayName: "numpy", ImportName: "numpy", PackageName: "numpy"},
	{DisplayName: "transformers", ImportName: "transformers", PackageName: "transformers"},
	{DisplayName: "diffusers", ImportName: "diffusers", PackageName: "diffusers"},
}

// LibraryVersion is a resolved watch-list entry
type LibraryVersion struct {
	Key     string
	Version string
}
