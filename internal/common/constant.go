package common

// DefaultImageFolder is the object storage folder used for note images.
const DefaultImageFolder = "notes"

// MinPasswordLength is the shortest password accepted on register, change
// and reset.
const MinPasswordLength = 6
