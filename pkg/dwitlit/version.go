package dwitlit

// Version is the release version reported by the dwitlit command.
const Version = "0.1.0"
