// Package storage persists scrape results to the local filesystem.
//
// Manager.SaveResults writes a batch as a JSON array with one record per
// post. Every record has the keys url, content, success and error; content
// and error are null when absent. Files are written to a temporary path and
// renamed into place so an interrupted write never leaves a truncated file.
//
//	manager, err := storage.NewManager(".")
//	if err != nil {
//	    return err
//	}
//	path, err := manager.SaveResults("instagram_posts.json", batch)
package storage
