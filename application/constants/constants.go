package constants

// These values will be injected at build time, DO NOT EDIT.

// BackendVersion 当前版本号
var BackendVersion = "1.4.0"

// LastCommit 最后commit id
var LastCommit = "000000"

// SnapshotVersion is the format version written into exported settings snapshots.
const SnapshotVersion = "1.0.0"

// AppDirName is the subdirectory created under a directory-style WebDAV target.
const AppDirName = "QuickTabNavigator"
