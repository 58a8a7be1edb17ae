// Package denoise implements bilateral point cloud denoising
// (Fleishman, Drori and Cohen-Or, "Bilateral Mesh Denoising").
//
// Each pass triangulates the current point cloud and moves every point
// along its estimated normal by a weighted average of the heights of its
// neighbors. The spatial kernel width (sigma_c) follows the local point
// spacing and the influence kernel width (sigma_s) follows the spread of the
// neighbor heights, so sharp features are preserved while noise is smoothed.
package denoise
