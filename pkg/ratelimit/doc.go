// Package ratelimit paces page loads so the batch pipeline idles for a
// configured interval between two post requests.
//
// IntervalPacer sleeps for the whole interval on every Wait, measured from
// the call, so a slow page load does not shorten the next pause. Wait honors
// context cancellation, which lets SIGINT interrupt a pause.
//
//	pacer := ratelimit.NewIntervalPacer(time.Second)
//	for i, url := range urls {
//	    // load url
//	    if i < len(urls)-1 {
//	        if err := pacer.Wait(ctx); err != nil {
//	            return err
//	        }
//	    }
//	}
package ratelimit
