// Package moderationpipeline decides whether an uploaded marketplace asset is
// published or rejected. Text metadata is screened first, then the image.
// Image failures reject the upload; text failures degrade to a pass.
package moderationpipeline
